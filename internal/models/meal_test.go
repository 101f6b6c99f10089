package models

import "testing"

func TestMealTotals(t *testing.T) {
	m := &Meal{
		Foods: []Food{
			{Name: "Oats", Calories: 300, Protein: 10, Carbs: 54, Fats: 6},
			{Name: "Banana", Calories: 105, Protein: 1, Carbs: 27, Fats: 0},
		},
	}

	totals := m.Totals()
	if totals.Calories != 405 {
		t.Fatalf("expected 405 calories, got %f", totals.Calories)
	}
	if totals.Protein != 11 || totals.Carbs != 81 || totals.Fats != 6 {
		t.Fatalf("unexpected macro totals: %+v", totals)
	}
}

func TestMealTotalsNilAndEmpty(t *testing.T) {
	var m *Meal
	if got := m.Totals(); got != (MacroTotals{}) {
		t.Fatalf("nil meal produced totals: %+v", got)
	}
	if got := (&Meal{}).Totals(); got != (MacroTotals{}) {
		t.Fatalf("empty meal produced totals: %+v", got)
	}
}

func TestValidMealType(t *testing.T) {
	for _, valid := range []string{MealBreakfast, MealLunch, MealDinner, MealSnacks} {
		if !ValidMealType(valid) {
			t.Fatalf("%q rejected", valid)
		}
	}
	if ValidMealType("brunch") {
		t.Fatalf("unknown meal type accepted")
	}
}

func TestValidExerciseID(t *testing.T) {
	if !ValidExerciseID("EX-001") {
		t.Fatalf("EX-001 rejected")
	}
	for _, bad := range []string{"EX-1", "ex-001", "EX-0001", "WK-001", ""} {
		if ValidExerciseID(bad) {
			t.Fatalf("%q accepted", bad)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Fatalf("nil user reported admin")
	}
	if (&User{Role: RoleUser}).IsAdmin() {
		t.Fatalf("regular user reported admin")
	}
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Fatalf("admin not recognized")
	}
}
