package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"rbx/logicore/internal/entity"
)

func newMockDAO(t *testing.T) (*RateCardDAO, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return NewRateCardDAO(gdb), mock
}

func TestListActiveMapsRows(t *testing.T) {
	dao, mock := newMockDAO(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "mode", "courier", "service", "base_rate", "additional_weight_rate",
		"cod_rate", "cod_percentage", "gst_percentage", "free_weight_threshold",
		"weight_step", "transit_days", "zones", "active", "created_at", "updated_at",
	}).
		AddRow(1, "Express", "Delhivery", "Express", "40.00", "20.00", "30.00", "0.0000", "0.1800", "0.500", "0.000", 2,
			[]byte(`{"SPECIAL":{"baseRate":75,"additionalWeightRate":35}}`), true, now, now).
		AddRow(2, "Surface", "Xpressbees", "", "32.00", "14.00", "25.00", "0.0150", "0.1800", "0.500", "0.500", 5,
			[]byte(`{}`), true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `rate_cards` WHERE active = ? ORDER BY mode")).
		WithArgs(true).
		WillReturnRows(rows)

	cards, err := dao.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(cards))
	}
	if cards[0].Mode != "Express" || !cards[0].BaseRate.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected first row: %+v", cards[0])
	}
	if !cards[1].CODPercentage.Equal(decimal.RequireFromString("0.015")) {
		t.Fatalf("unexpected cod percentage: %s", cards[1].CODPercentage)
	}
	if len(cards[0].Zones) == 0 || string(cards[1].Zones) != "{}" {
		t.Fatalf("unexpected zones mapping: %q / %q", cards[0].Zones, cards[1].Zones)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRegions(t *testing.T) {
	dao, mock := newMockDAO(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `pincode_regions`")).
		WillReturnRows(sqlmock.NewRows([]string{"pincode", "city", "state", "metro", "special"}).
			AddRow("110001", "DELHI", "DL", true, false).
			AddRow("781001", "GUWAHATI", "AS", false, true))

	regions, err := dao.ListRegions(context.Background())
	if err != nil {
		t.Fatalf("list regions: %v", err)
	}
	if len(regions) != 2 || !regions[1].Special || regions[0].City != "DELHI" {
		t.Fatalf("unexpected regions: %+v", regions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertRateCard(t *testing.T) {
	dao, mock := newMockDAO(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rate_cards`")).
		WillReturnResult(sqlmock.NewResult(3, 1))

	row := &entity.RateCard{
		Mode:                 "Air",
		Courier:              "BlueDart",
		BaseRate:             decimal.NewFromInt(60),
		AdditionalWeightRate: decimal.NewFromInt(25),
		GSTPercentage:        decimal.RequireFromString("0.18"),
		Zones:                datatypes.JSON(`{}`),
		Active:               true,
	}
	if err := dao.UpsertRateCard(context.Background(), row); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if row.UpdatedAt.IsZero() || row.CreatedAt.IsZero() {
		t.Fatalf("timestamps should be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListActiveWrapsError(t *testing.T) {
	dao, mock := newMockDAO(t)

	mock.ExpectQuery("SELECT \\* FROM `rate_cards`").WillReturnError(gorm.ErrInvalidDB)

	if _, err := dao.ListActive(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
