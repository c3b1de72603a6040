package setup

import (
	"context"
	"testing"

	"rbx/logicore/internal/model"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/logger"
)

func TestQuoteServiceFromStaticConfig(t *testing.T) {
	cfg := &config.Config{
		Rates: config.RatesConfig{
			Source:    config.SourceStatic,
			Directory: "static",
			Cards: []config.RateCardConfig{
				{Mode: "Express", BaseRate: 40, AdditionalWeightRate: 20, CODRate: 30, GSTPercentage: 0.18, FreeWeightThreshold: 0.5},
			},
		},
	}

	svc, cleanup, err := QuoteService(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer cleanup()

	res, err := svc.Quote(context.Background(), model.QuoteRequest{
		SourcePincode:      "110001",
		DestinationPincode: "110002",
		WeightKg:           1,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if res.Status != model.QuoteStatusOK || len(res.Rates) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestQuoteServiceRejectsBadConfig(t *testing.T) {
	cases := map[string]config.RatesConfig{
		"unknown source": {Source: "ftp", Directory: "static"},
		"invalid card":   {Source: config.SourceStatic, Directory: "static", Cards: []config.RateCardConfig{{Mode: "X"}}},
	}
	for name, rates := range cases {
		t.Run(name, func(t *testing.T) {
			_, cleanup, err := QuoteService(context.Background(), &config.Config{Rates: rates}, logger.NewNop())
			defer cleanup()
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
