package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamauto/chatcore/convo"
	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
	"github.com/siamauto/chatcore/gateway"
	"github.com/siamauto/chatcore/model"
	"github.com/siamauto/chatcore/respcache"
	"github.com/siamauto/chatcore/summarize"
	"github.com/siamauto/chatcore/tool"
)

// fakeSvc is a scriptable dealer.Service for pipeline-level tests.
type fakeSvc struct {
	cars      []dealer.Car
	gotCreate *dealer.AppointmentRequest
	link      *dealer.LinkStatus
}

func (f *fakeSvc) QueryCars(context.Context, dealer.CarFilter) ([]dealer.Car, error) {
	return f.cars, nil
}

func (f *fakeSvc) CreateAppointment(_ context.Context, req dealer.AppointmentRequest) (*dealer.MutationResult, error) {
	f.gotCreate = &req
	return &dealer.MutationResult{Success: true, ReferenceID: "APT-1"}, nil
}

func (f *fakeSvc) EditAppointment(context.Context, dealer.AppointmentEdit) (*dealer.MutationResult, error) {
	return &dealer.MutationResult{Success: true}, nil
}

func (f *fakeSvc) CancelAppointment(context.Context, string) (*dealer.MutationResult, error) {
	return &dealer.MutationResult{Success: true}, nil
}

func (f *fakeSvc) QueryAppointments(context.Context, dealer.AppointmentFilter) ([]dealer.Appointment, error) {
	return nil, nil
}

func (f *fakeSvc) CheckIdentityLink(context.Context, string, string) (*dealer.LinkStatus, error) {
	if f.link == nil {
		return &dealer.LinkStatus{}, nil
	}
	return f.link, nil
}

// fakeStore records persistence calls without a database.
type fakeStore struct {
	loaded    []core.Message
	saved     int
	savedMeta convo.TurnMeta
}

func (f *fakeStore) LoadMinimalContext(context.Context, string, string) ([]core.Message, error) {
	return f.loaded, nil
}

func (f *fakeStore) SaveImportant(_ context.Context, _ string, _, _ core.Message, meta convo.TurnMeta) error {
	f.saved++
	f.savedMeta = meta
	return nil
}

func (f *fakeStore) MaybeCleanup(int) {}

func newRegistry(svc dealer.Service) *tool.Registry {
	r := tool.NewRegistry(nil)
	r.Register(tool.NewCarQueryTool(svc))
	r.Register(tool.NewBookAppointmentTool(svc))
	r.Register(tool.NewEditAppointmentTool(svc))
	r.Register(tool.NewCancelAppointmentTool(svc))
	r.Register(tool.NewQueryAppointmentsTool(svc))
	return r
}

func newPipeline(gwModel, sumModel model.Model, svc dealer.Service, optFns ...func(o *PipelineOptions)) *Pipeline {
	gw := gateway.New(gwModel, func(o *gateway.Options) { o.Tools = tool.Declarations() })
	sum := summarize.New(sumModel)
	return NewPipeline(gw, newRegistry(svc), sum, optFns...)
}

func TestRun_PlainTextTurn(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("สวัสดีค่ะ", "สวัสดีค่ะ มีอะไรให้ช่วยไหมคะ")
	p := newPipeline(m, m, &fakeSvc{})

	out := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "สวัสดีค่ะ"})

	assert.Equal(t, "สวัสดีค่ะ มีอะไรให้ช่วยไหมคะ", out.Text)
	assert.Empty(t, out.FunctionName)
	assert.False(t, out.FromCache)
}

func TestRun_CacheShortCircuit(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("ศูนย์บริการเปิดกี่โมง", "เปิด 9 โมงเช้าค่ะ")
	p := newPipeline(m, m, &fakeSvc{}, func(o *PipelineOptions) {
		o.Responses = respcache.New()
	})

	first := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "ศูนย์บริการเปิดกี่โมง"})
	callsAfterFirst := m.Calls()
	second := p.Run(context.Background(), Turn{UserID: "u2", Platform: PlatformWeb, Text: "ศูนย์บริการเปิดกี่โมง"})

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, callsAfterFirst, m.Calls(), "cached turn makes no model call")
	assert.EqualValues(t, 1, p.Monitor().Snapshot().CacheHits)
}

func TestRun_CacheHitStillPersistsImportantTurn(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("ผ่อนขั้นต่ำเท่าไหร่", "เริ่มต้นเดือนละ 5,900 บาทค่ะ")
	store := &fakeStore{}
	p := newPipeline(m, m, &fakeSvc{}, func(o *PipelineOptions) {
		o.Responses = respcache.New()
		o.Store = store
	})

	first := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "ผ่อนขั้นต่ำเท่าไหร่"})
	second := p.Run(context.Background(), Turn{UserID: "u2", Platform: PlatformWeb, Text: "ผ่อนขั้นต่ำเท่าไหร่"})

	require.False(t, first.FromCache)
	require.True(t, second.FromCache)
	assert.Equal(t, 2, store.saved, "cached answers still pass the importance gate")
}

func TestRun_CarQueryGoesThroughSummarizer(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("มีรถ Toyota ไม่เกิน 500000 ไหม", tool.FnQueryCars, `{"brand":"Toyota","max_price":500000}`)
	sm := model.NewMockModel("sum", "mock")
	svc := &fakeSvc{cars: []dealer.Car{
		{ID: "c1", Brand: "Toyota", Model: "Vios", Year: 2019, Price: 389000},
		{ID: "c2", Brand: "Toyota", Model: "Yaris", Year: 2020, Price: 450000},
		{ID: "c3", Brand: "Toyota", Model: "Altis", Year: 2018, Price: 499000},
	}}
	p := newPipeline(gw, sm, svc)

	out := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "มีรถ Toyota ไม่เกิน 500000 ไหม"})

	assert.Equal(t, tool.FnQueryCars, out.FunctionName)
	require.NotNil(t, out.Result)
	assert.Equal(t, 3, out.Result.Count)
	lte, ok := out.Result.Query["lte"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 500000, lte["price"])
	assert.NotEmpty(t, out.Text)
	assert.Equal(t, 1, sm.Calls(), "summarizer ran once")
}

func TestRun_NoMatchSkipsSummarizer(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("มี Lamborghini ไหม", tool.FnQueryCars, `{"brand":"Lamborghini"}`)
	sm := model.NewMockModel("sum", "mock")
	p := newPipeline(gw, sm, &fakeSvc{})

	out := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "มี Lamborghini ไหม"})

	assert.Equal(t, tool.NoMatchingCarsMessage, out.Text)
	assert.Zero(t, sm.Calls(), "fixed no-match answer needs no summarization")

	snap := p.Monitor().Snapshot()
	assert.Zero(t, snap.Failures, "empty result set is not a failure sample")
	assert.EqualValues(t, 1, snap.Successes)
}

func TestRun_TimeoutProducesApology(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	p := newPipeline(m, m, &fakeSvc{}, func(o *PipelineOptions) {
		o.Timeout = time.Nanosecond
	})

	out := p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "สวัสดี"})

	assert.Equal(t, TimeoutMessage, out.Text)
	assert.EqualValues(t, 1, p.Monitor().Snapshot().Timeouts)
}

func TestRun_ImportantTurnPersisted(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("จองคิวให้คุณสมชายพรุ่งนี้สิบโมง", tool.FnBookAppointment,
		`{"customer_name":"คุณสมชาย","date":"2025-04-01","start_time":"10:00"}`)
	store := &fakeStore{}
	p := newPipeline(gw, gw, &fakeSvc{}, func(o *PipelineOptions) {
		o.Store = store
	})
	user := &core.User{ID: "u1", EmployeeID: "emp-1"}

	p.Run(context.Background(), Turn{UserID: "u1", SessionID: "s1", Platform: PlatformMobile, Text: "จองคิวให้คุณสมชายพรุ่งนี้สิบโมง", User: user})

	assert.Equal(t, 1, store.saved)
	assert.Equal(t, tool.FnBookAppointment, store.savedMeta.FunctionName)
	assert.Equal(t, PlatformMobile, store.savedMeta.Platform)
	assert.Equal(t, "s1", store.savedMeta.SessionID)
}

func TestRun_CasualTurnNotPersisted(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("สวัสดี", "สวัสดีค่ะ")
	store := &fakeStore{}
	p := newPipeline(m, m, &fakeSvc{}, func(o *PipelineOptions) {
		o.Store = store
	})

	p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "สวัสดี"})

	assert.Zero(t, store.saved)
}

func TestRun_HistoryKeywordWarmsFromStore(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	store := &fakeStore{loaded: []core.Message{
		core.NewUserMessage("มีรถ Toyota ไหม"),
		core.NewAssistantMessage("มีค่ะ 3 คัน"),
	}}
	cache := convo.NewCache()
	p := newPipeline(m, m, &fakeSvc{}, func(o *PipelineOptions) {
		o.Store = store
		o.Cache = cache
	})

	p.Run(context.Background(), Turn{UserID: "u1", Platform: PlatformWeb, Text: "คันเดิมที่คุยไว้ราคาเท่าไหร่"})

	assert.Len(t, cache.GetMessages("u1"), 4, "warmed history plus the new exchange")
}

func TestLine_UnlinkedUserGetsLinkPrompt(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("จองคิวให้คุณสมชาย", tool.FnBookAppointment,
		`{"customer_name":"คุณสมชาย","date":"2025-04-01","start_time":"10:00"}`)
	svc := &fakeSvc{link: &dealer.LinkStatus{Linked: false}}
	p := newPipeline(gw, gw, svc, func(o *PipelineOptions) {
		o.Interceptor = LineInterceptor(svc, nil)
		o.Timeout = 8 * time.Second
	})
	line := NewLineAdapter(p)

	msgs, out := line.Respond(context.Background(), "U-line-1", "จองคิวให้คุณสมชาย")

	assert.Equal(t, AccountLinkMessage, out.Text)
	assert.Nil(t, svc.gotCreate, "no booking call for an unlinked user")
	require.Len(t, msgs, 1)
	text, ok := msgs[0].(*linebot.TextMessage)
	require.True(t, ok)
	assert.Equal(t, AccountLinkMessage, text.Text)
}

func TestLine_LinkedUserBooksWithResolvedIdentity(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("จองคิวให้คุณสมชาย", tool.FnBookAppointment,
		`{"customer_name":"คุณสมชาย","date":"2025-04-01","start_time":"10:00"}`)
	svc := &fakeSvc{link: &dealer.LinkStatus{Linked: true, UserID: "u7", EmployeeID: "emp-7"}}
	p := newPipeline(gw, gw, svc, func(o *PipelineOptions) {
		o.Interceptor = LineInterceptor(svc, nil)
	})
	line := NewLineAdapter(p)

	_, out := line.Respond(context.Background(), "U-line-1", "จองคิวให้คุณสมชาย")

	require.NotNil(t, svc.gotCreate)
	assert.Equal(t, "emp-7", svc.gotCreate.EmployeeID)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Success)
}

func TestLine_SessionGroupedByUser(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("จองคิวให้คุณสมชาย", tool.FnBookAppointment,
		`{"customer_name":"คุณสมชาย","date":"2025-04-01","start_time":"10:00"}`)
	svc := &fakeSvc{link: &dealer.LinkStatus{Linked: true, UserID: "u7", EmployeeID: "emp-7"}}
	store := &fakeStore{}
	p := newPipeline(gw, gw, svc, func(o *PipelineOptions) {
		o.Interceptor = LineInterceptor(svc, nil)
		o.Store = store
	})
	line := NewLineAdapter(p)

	line.Respond(context.Background(), "U-line-1", "จองคิวให้คุณสมชาย")

	require.Equal(t, 1, store.saved)
	assert.Equal(t, "U-line-1", store.savedMeta.SessionID, "stored turns group under the LINE user id")
}

func TestLine_FlexRenderingForCarResults(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("มีรถอะไรบ้าง", tool.FnQueryCars, `{}`)
	svc := &fakeSvc{cars: []dealer.Car{
		{ID: "c1", Brand: "Toyota", Model: "Vios", Year: 2019, Price: 389000, DetailURL: "https://cars.example/c1"},
		{ID: "c2", Brand: "Honda", Model: "City", Year: 2020, Price: 455000, DetailURL: "https://cars.example/c2"},
		{ID: "c3", Brand: "Mazda", Model: "2", Year: 2021, Price: 512000, DetailURL: "https://cars.example/c3"},
		{ID: "c4", Brand: "Nissan", Model: "Almera", Year: 2019, Price: 340000, DetailURL: "https://cars.example/c4"},
	}}
	p := newPipeline(gw, gw, svc)
	line := NewLineAdapter(p, func(o *LineOptions) {
		o.UseFlex = true
		o.BaseURL = "https://siamauto.example"
	})

	msgs, out := line.Respond(context.Background(), "U-line-1", "มีรถอะไรบ้าง")

	require.NotNil(t, out.Result)
	assert.Equal(t, 4, out.Result.Count)
	require.Len(t, msgs, 1)
	flex, ok := msgs[0].(*linebot.FlexMessage)
	require.True(t, ok)
	carousel, ok := flex.Contents.(*linebot.CarouselContainer)
	require.True(t, ok)
	assert.Len(t, carousel.Contents, maxFlexItems+1, "three highlighted cars plus view-more")
}

func TestLine_TextFallbackWhenFlexDisabled(t *testing.T) {
	gw := model.NewMockModel("gw", "mock")
	gw.AddToolCall("มีรถอะไรบ้าง", tool.FnQueryCars, `{}`)
	svc := &fakeSvc{cars: []dealer.Car{
		{ID: "c1", Brand: "Toyota", Model: "Vios", Year: 2019, Price: 389000},
	}}
	p := newPipeline(gw, gw, svc)
	line := NewLineAdapter(p)

	msgs, _ := line.Respond(context.Background(), "U-line-1", "มีรถอะไรบ้าง")

	require.Len(t, msgs, 1)
	_, ok := msgs[0].(*linebot.TextMessage)
	assert.True(t, ok)
}

func TestCarSearchURL(t *testing.T) {
	query := map[string]any{"brand": "Toyota"}

	web := CarSearchURL("https://siamauto.example/", "", query)
	assert.Contains(t, web, "https://siamauto.example/cars?q=")
	assert.Contains(t, web, "%22brand%22%3A%22Toyota%22")

	liff := CarSearchURL("https://siamauto.example", "1234-abcd", query)
	assert.Contains(t, liff, "https://liff.line.me/1234-abcd?q=")
}
