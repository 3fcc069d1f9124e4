package tool

import (
	"context"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
)

// NoMatchingCarsMessage is the fixed domain-level "no results" answer.
// Zero rows is a successful query with nothing to show, not a system error.
const NoMatchingCarsMessage = "ไม่พบรถที่ตรงกับเงื่อนไขค่ะ ลองปรับช่วงราคา ปี หรือรุ่นดูนะคะ"

const defaultCarLimit = 20

// CarQueryTool translates structured filter/sort/limit arguments into an
// inventory query and maps rows into a flattened, display-ready shape.
type CarQueryTool struct {
	svc dealer.Service
}

// NewCarQueryTool constructs the handler for queryCarsComprehensive.
func NewCarQueryTool(svc dealer.Service) *CarQueryTool {
	return &CarQueryTool{svc: svc}
}

// Name implements Tool.
func (t *CarQueryTool) Name() string { return FnQueryCars }

// Parameters implements Tool.
func (t *CarQueryTool) Parameters() map[string]any {
	return declarationFor(FnQueryCars)
}

// Execute implements Tool.
func (t *CarQueryTool) Execute(ctx context.Context, args map[string]any, _ *core.User) (*core.FunctionResult, error) {
	filter := dealer.CarFilter{
		Brand:    stringArg(args, "brand"),
		Category: stringArg(args, "category"),
		Branch:   stringArg(args, "branch"),
		MinPrice: floatArg(args, "min_price"),
		MaxPrice: floatArg(args, "max_price"),
		MinYear:  intArg(args, "min_year"),
		MaxYear:  intArg(args, "max_year"),
		SortBy:   stringArg(args, "sort_by"),
		Limit:    intArg(args, "limit"),
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultCarLimit
	}

	cars, err := t.svc.QueryCars(ctx, filter)
	if err != nil {
		return nil, NewToolError(FnQueryCars, err.Error(), "EXECUTION_ERROR")
	}

	query := resolvedCarQuery(filter)
	if len(cars) == 0 {
		return &core.FunctionResult{
			Success: false,
			Summary: NoMatchingCarsMessage,
			Kind:    core.KindCar,
			Query:   query,
		}, nil
	}

	records := make([]map[string]any, 0, len(cars))
	for _, c := range cars {
		records = append(records, carRecord(c))
	}
	return &core.FunctionResult{
		Success: true,
		RawData: records,
		Count:   len(records),
		Kind:    core.KindCar,
		Query:   query,
	}, nil
}

// resolvedCarQuery echoes the effective filter in the operator shape the
// "view all results" page consumes (equality fields plus lte/gte ranges).
func resolvedCarQuery(f dealer.CarFilter) map[string]any {
	query := map[string]any{}
	if f.Brand != "" {
		query["brand"] = f.Brand
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Branch != "" {
		query["branch"] = f.Branch
	}
	lte := map[string]any{}
	if f.MaxPrice > 0 {
		lte["price"] = f.MaxPrice
	}
	if f.MaxYear > 0 {
		lte["year"] = f.MaxYear
	}
	if len(lte) > 0 {
		query["lte"] = lte
	}
	gte := map[string]any{}
	if f.MinPrice > 0 {
		gte["price"] = f.MinPrice
	}
	if f.MinYear > 0 {
		gte["year"] = f.MinYear
	}
	if len(gte) > 0 {
		query["gte"] = gte
	}
	if f.SortBy != "" {
		query["sort_by"] = f.SortBy
	}
	query["limit"] = f.Limit
	return query
}

// carRecord flattens an inventory row for display and summarization.
func carRecord(c dealer.Car) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"brand":     c.Brand,
		"model":     c.Model,
		"category":  c.Category,
		"branch":    c.Branch,
		"year":      c.Year,
		"price":     c.Price,
		"mileage":   c.Mileage,
		"image_url": c.ImageURL,
		"url":       c.DetailURL,
	}
}

// declarationFor looks up the declared schema so handlers and declarations
// cannot drift apart.
func declarationFor(name string) map[string]any {
	for _, d := range Declarations() {
		if d.Name == name {
			return d.Parameters
		}
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
