package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValueAny(t *testing.T) {
	cases := []struct {
		val  Value
		want interface{}
	}{
		{BoolValue(true), true},
		{IntValue(-5), int64(-5)},
		{DoubleValue(1.5), 1.5},
		{StringValue("x"), "x"},
		{JSONValue(`{"a":1}`), `{"a":1}`},
	}
	for _, tc := range cases {
		if got := tc.val.Any(); got != tc.want {
			t.Errorf("Any(%s) = %v, want %v", tc.val.Type, got, tc.want)
		}
	}

	if Any := (Value{Type: "struct:Pose2d"}).Any(); Any != nil {
		t.Errorf("Expected nil for unknown type, got %v", Any)
	}
}

func TestValueEqual(t *testing.T) {
	if !DoublesValue([]float64{1, 2}).Equal(DoublesValue([]float64{1, 2})) {
		t.Error("Expected equal arrays to compare equal")
	}
	if DoublesValue([]float64{1, 2}).Equal(DoublesValue([]float64{1, 3})) {
		t.Error("Expected differing arrays to compare unequal")
	}
	if DoubleValue(1).Equal(IntValue(1)) {
		t.Error("Expected different tags to compare unequal")
	}
	// float[] and double[] share payload representation but not tags
	if DoublesValue([]float64{1}).Equal(FloatsValue([]float64{1})) {
		t.Error("Expected float[] and double[] to compare unequal")
	}
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal(StringsValue([]string{"a", "b"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("Expected bare array, got %s", data)
	}

	data, _ = json.Marshal(BoolValue(false))
	if string(data) != "false" {
		t.Errorf("Expected bare bool, got %s", data)
	}
}

func TestSeriesPointMarshalJSON(t *testing.T) {
	ts := time.Date(2024, 3, 16, 14, 30, 0, 0, time.UTC)
	p := SeriesPoint{Time: ts, Value: DoubleValue(2.5)}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var pair [2]json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		t.Fatalf("Expected a two-element array, got %s: %v", data, err)
	}
	if string(pair[0]) != "1710599400000" {
		t.Errorf("Expected unix millis, got %s", pair[0])
	}
	if string(pair[1]) != "2.5" {
		t.Errorf("Expected bare value, got %s", pair[1])
	}
}
