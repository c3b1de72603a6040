package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/calculator"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

func card(mode string, base, add string, days int) calculator.RateCard {
	return calculator.RateCard{
		Mode:                 mode,
		Courier:              mode,
		BaseRate:             decimal.RequireFromString(base),
		AdditionalWeightRate: decimal.RequireFromString(add),
		CODRate:              decimal.NewFromInt(30),
		GSTPercentage:        decimal.RequireFromString("0.18"),
		FreeWeightThreshold:  decimal.RequireFromString("0.5"),
		TransitDays:          days,
	}
}

func staticSource(cards ...calculator.RateCard) Source {
	return SourceFunc(func(context.Context) ([]calculator.RateCard, error) {
		return cards, nil
	})
}

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func baseRequest() model.QuoteRequest {
	return model.QuoteRequest{
		SourcePincode:      "110001",
		DestinationPincode: "400001",
		WeightKg:           1.2,
		IsCOD:              true,
	}
}

func TestQuoteSortsAndTags(t *testing.T) {
	svc := NewService(staticSource(
		card("Express", "40", "20", 2),
		card("Surface", "30", "10", 5),
		card("Air", "60", "25", 1),
	), nil, nil)

	res, err := svc.Quote(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != model.QuoteStatusOK {
		t.Fatalf("expected OK, got %s", res.Status)
	}
	if res.Zone != string(zone.MetroToMetro) {
		t.Fatalf("expected METRO_TO_METRO, got %s", res.Zone)
	}
	if len(res.Rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(res.Rates))
	}

	wantOrder := []string{"Surface", "Express", "Air"}
	for i, mode := range wantOrder {
		if res.Rates[i].Mode != mode {
			t.Fatalf("rates[%d] = %s, want %s", i, res.Rates[i].Mode, mode)
		}
	}
	if res.RecommendedMode != "Surface" {
		t.Fatalf("expected Surface recommended, got %s", res.RecommendedMode)
	}
	if !hasTag(res.Rates[0], model.RateTagCheapest) {
		t.Fatalf("cheapest tag missing: %+v", res.Rates[0])
	}
	if !hasTag(res.Rates[2], model.RateTagFastest) {
		t.Fatalf("fastest tag missing: %+v", res.Rates[2])
	}

	// Express 的明细需与单卡计算一致
	express := res.Rates[1]
	if !express.Total.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("expected express total 99, got %s", express.Total)
	}
}

func TestQuoteDropsFailingCard(t *testing.T) {
	bad := card("Broken", "40", "20", 2)
	bad.GSTPercentage = decimal.NewFromInt(18)

	log, logs := observedLogger()
	svc := NewService(staticSource(card("Express", "40", "20", 2), bad), nil, log)

	res, err := svc.Quote(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("one failing card must not fail the quote: %v", err)
	}
	if len(res.Rates) != 1 || res.Rates[0].Mode != "Express" {
		t.Fatalf("expected only Express, got %+v", res.Rates)
	}
	if len(res.Failed) != 1 || res.Failed[0].Mode != "Broken" {
		t.Fatalf("expected Broken in failed list, got %+v", res.Failed)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected one warn log for the dropped card, got %d", logs.FilterLevelExact(zapcore.WarnLevel).Len())
	}
}

func TestQuoteAllCardsFailIsNoRates(t *testing.T) {
	bad := card("Broken", "40", "20", 2)
	bad.BaseRate = decimal.Zero

	svc := NewService(staticSource(bad), nil, nil)
	res, err := svc.Quote(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("NO_RATES must not be an error: %v", err)
	}
	if res.Status != model.QuoteStatusNoRates {
		t.Fatalf("expected NO_RATES, got %s", res.Status)
	}
	if len(res.Rates) != 0 || res.RecommendedMode != "" {
		t.Fatalf("expected empty rates, got %+v", res)
	}

	// 空费率卡同样是 NO_RATES
	res, err = NewService(staticSource(), nil, nil).Quote(context.Background(), baseRequest())
	if err != nil || res.Status != model.QuoteStatusNoRates {
		t.Fatalf("expected NO_RATES for empty source, got %+v, %v", res, err)
	}
}

func TestQuoteInvalidInput(t *testing.T) {
	svc := NewService(staticSource(card("Express", "40", "20", 2)), nil, nil)

	cases := []struct {
		name  string
		edit  func(*model.QuoteRequest)
		field string
	}{
		{"short source", func(r *model.QuoteRequest) { r.SourcePincode = "11001" }, "source_pincode"},
		{"leading zero destination", func(r *model.QuoteRequest) { r.DestinationPincode = "012345" }, "destination_pincode"},
		{"zero weight", func(r *model.QuoteRequest) { r.WeightKg = 0 }, "weight_kg"},
		{"negative declared", func(r *model.QuoteRequest) { r.DeclaredValue = decimal.NewFromInt(-1) }, "declared_value"},
		{"negative dimension", func(r *model.QuoteRequest) { r.Dimensions = &model.Dimensions{LengthCm: -1} }, "dimensions"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.edit(&req)
			_, err := svc.Quote(context.Background(), req)
			if !errorutil.IsKind(err, errorutil.KindInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if got := errorutil.Wrap(err).Field; got != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, got)
			}
		})
	}
}

func TestQuoteSourceFailureIsUpstream(t *testing.T) {
	svc := NewService(SourceFunc(func(context.Context) ([]calculator.RateCard, error) {
		return nil, errors.New("connection refused")
	}), nil, nil)

	_, err := svc.Quote(context.Background(), baseRequest())
	if !errorutil.IsKind(err, errorutil.KindUpstream) {
		t.Fatalf("expected UPSTREAM, got %v", err)
	}
	if !errorutil.IsRetryable(err) {
		t.Fatalf("upstream failure should be retryable")
	}
}

func TestQuoteCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc := NewService(SourceFunc(func(context.Context) ([]calculator.RateCard, error) {
		cancel()
		return []calculator.RateCard{card("Express", "40", "20", 2)}, nil
	}), nil, nil)

	_, err := svc.Quote(ctx, baseRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestQuoteModesFilter(t *testing.T) {
	svc := NewService(staticSource(
		card("Express", "40", "20", 2),
		card("Surface", "30", "10", 5),
		card("Express", "45", "20", 2),
	), nil, nil, WithConcurrency(1))

	req := baseRequest()
	req.Modes = []string{"express", "Drone"}

	res, err := svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rates) != 1 || res.Rates[0].Mode != "Express" {
		t.Fatalf("expected only Express, got %+v", res.Rates)
	}
	if !res.Rates[0].BaseCharge.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("first Express card should win, got base %s", res.Rates[0].BaseCharge)
	}

	reasons := map[string]string{}
	for _, f := range res.Failed {
		reasons[f.Mode] = f.Reason
	}
	if _, ok := reasons["Drone"]; !ok {
		t.Fatalf("unknown mode should be reported: %+v", res.Failed)
	}
	if _, ok := reasons["Express"]; !ok {
		t.Fatalf("duplicate mode should be reported: %+v", res.Failed)
	}
}

func TestQuoteUsesChargeableWeight(t *testing.T) {
	svc := NewService(staticSource(card("Express", "40", "20", 2)), nil, nil)

	req := baseRequest()
	req.IsCOD = false
	// 30*20*20/5000 = 2.4kg
	req.Dimensions = &model.Dimensions{LengthCm: 30, WidthCm: 20, HeightCm: 20}

	res, err := svc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := res.Rates[0]
	if !r.ChargeableWeight.Equal(decimal.RequireFromString("2.4")) {
		t.Fatalf("expected chargeable weight 2.4, got %s", r.ChargeableWeight)
	}
	// (2.4-0.5)*20 = 38
	if !r.AdditionalWeightCharge.Equal(decimal.NewFromInt(38)) {
		t.Fatalf("expected additional 38, got %s", r.AdditionalWeightCharge)
	}
}

func hasTag(r model.ShippingRate, tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestValidateDoesNotTouchSource(t *testing.T) {
	calls := 0
	svc := NewService(SourceFunc(func(context.Context) ([]calculator.RateCard, error) {
		calls++
		return nil, nil
	}), nil, nil)

	if err := svc.Validate(baseRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	req := baseRequest()
	req.WeightKg = -2
	if err := svc.Validate(req); !errorutil.IsKind(err, errorutil.KindInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	req = baseRequest()
	req.VolumetricDivisor = -1
	if got := errorutil.Wrap(svc.Validate(req)).Field; got != "volumetric_divisor" {
		t.Fatalf("expected volumetric_divisor, got %s", got)
	}
	if calls != 0 {
		t.Fatalf("Validate must not fetch rate cards, got %d calls", calls)
	}
}
