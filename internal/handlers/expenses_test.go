package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/card-planner/backend/internal/models"
)

// TestBuildThisMonth проверяет итоги месяца по постоянным и переменным расходам.
func TestBuildThisMonth(t *testing.T) {
	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fixed := []models.FixedExpense{
		{ID: rentID, Name: "Rent", AmountCents: 150000, DueDay: 1, Active: true},
		{ID: phoneID, Name: "Phone", AmountCents: 5000, DueDay: 20, Active: true},
	}
	payments := []models.ExpensePayment{
		{ID: uuid.New(), ExpenseID: rentID, Month: 1, Year: 2026, AmountCents: 150000, PaymentMethod: models.PaymentMethodCash},
	}
	variable := []models.VariableExpense{
		{ID: uuid.New(), Description: "Groceries", AmountCents: 1234, Category: "food", ExpenseDate: month.AddDate(0, 0, 3)},
		{ID: uuid.New(), Description: "Cinema", AmountCents: 766, Category: "fun", ExpenseDate: month.AddDate(0, 0, 5)},
	}

	response := buildThisMonth(month, fixed, payments, variable)

	if response.Month != "2026-01" {
		t.Fatalf("unexpected month: %s", response.Month)
	}
	if response.FixedTotal != 1550 || response.FixedPaid != 1500 || response.FixedPending != 50 {
		t.Fatalf("unexpected fixed totals: %+v", response)
	}
	if response.VariableTotal != 20 {
		t.Fatalf("unexpected variable total: %v", response.VariableTotal)
	}
	if !response.Fixed[0].Paid || response.Fixed[1].Paid {
		t.Fatalf("unexpected paid flags: %+v", response.Fixed)
	}
	if response.Variable[0].Date != "2026-01-04" || response.Variable[0].Amount != 12.34 {
		t.Fatalf("unexpected variable expense: %+v", response.Variable[0])
	}
}

// TestBuildThisMonthEmpty проверяет, что пустой месяц отдает пустые списки, а не null.
func TestBuildThisMonthEmpty(t *testing.T) {
	month := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	response := buildThisMonth(month, nil, nil, nil)

	if response.Fixed == nil || response.Payments == nil || response.Variable == nil {
		t.Fatal("expected empty slices")
	}
	if response.FixedTotal != 0 || response.VariableTotal != 0 {
		t.Fatalf("unexpected totals: %+v", response)
	}
}

// TestParseOptionalID проверяет разбор необязательного идентификатора карты.
func TestParseOptionalID(t *testing.T) {
	id, err := parseOptionalID(nil)
	if err != nil || id != nil {
		t.Fatalf("expected nil id, got %v %v", id, err)
	}

	empty := "  "
	id, err = parseOptionalID(&empty)
	if err != nil || id != nil {
		t.Fatalf("expected blank id to be ignored, got %v %v", id, err)
	}

	value := visaID.String()
	id, err = parseOptionalID(&value)
	if err != nil || id == nil || *id != visaID {
		t.Fatalf("unexpected id: %v %v", id, err)
	}

	bad := "not-a-uuid"
	if _, err := parseOptionalID(&bad); err == nil {
		t.Fatal("expected error for invalid id")
	}
}
