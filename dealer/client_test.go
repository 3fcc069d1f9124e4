package dealer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClient_QueryCars(t *testing.T) {
	var gotFilter CarFilter
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cars/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotFilter))
		w.Write([]byte(`{"success":true,"data":[{"id":"c1","brand":"Toyota","model":"Vios","year":2019,"price":389000}]}`))
	})

	cars, err := client.QueryCars(context.Background(), CarFilter{Brand: "Toyota", MaxPrice: 500000})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Vios", cars[0].Model)
	assert.Equal(t, "Toyota", gotFilter.Brand)
	assert.EqualValues(t, 500000, gotFilter.MaxPrice)
}

func TestClient_QueryCars_EmptyData(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":null}`))
	})

	cars, err := client.QueryCars(context.Background(), CarFilter{})
	require.NoError(t, err)
	assert.Empty(t, cars)
}

func TestClient_CreateAppointment_RelaysSummaryAndError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"slot taken","summary":"ช่วงเวลานี้ถูกจองแล้ว"}`))
	})

	res, err := client.CreateAppointment(context.Background(), AppointmentRequest{EmployeeID: "e1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "slot taken", res.Error)
	assert.Equal(t, "ช่วงเวลานี้ถูกจองแล้ว", res.Summary)
}

func TestClient_CheckIdentityLink(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/identity/check", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"linked":true,"user_id":"u7","employee_id":"emp-7"}}`))
	})

	status, err := client.CheckIdentityLink(context.Background(), "line", "U123")
	require.NoError(t, err)
	assert.True(t, status.Linked)
	assert.Equal(t, "emp-7", status.EmployeeID)
}

func TestClient_ServerErrorIsTransportFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.QueryCars(context.Background(), CarFilter{})
	assert.Error(t, err)
}
