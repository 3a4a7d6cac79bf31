package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	series := gen.Generate(config)
	data := series.Candles

	if len(data) != 100 {
		t.Errorf("expected 100 candles, got %d", len(data))
	}

	if series.Symbol != config.Symbol {
		t.Errorf("expected symbol %s, got %s", config.Symbol, series.Symbol)
	}

	if series.Location != config.Location {
		t.Errorf("expected location %v, got %v", config.Location, series.Location)
	}

	for i := 1; i < len(data); i++ {
		if !data[i].Time.After(data[i-1].Time) {
			t.Errorf("data not in chronological order at index %d", i)
		}
	}

	for i, d := range data {
		if d.Open <= 0 || d.High <= 0 || d.Low <= 0 || d.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, d.Open, d.High, d.Low, d.Close)
		}

		if d.High < d.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, d.High, d.Low)
		}
	}

	for i := 1; i < len(data); i++ {
		if actual := data[i].Time.Sub(data[i-1].Time); actual != config.Interval {
			t.Errorf("unexpected interval at index %d: expected %v, got %v", i, config.Interval, actual)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 50

	a := NewDataGenerator(7).Generate(config)
	b := NewDataGenerator(7).Generate(config)

	for i := range a.Candles {
		if a.Candles[i] != b.Candles[i] {
			t.Fatalf("candle %d differs between runs with the same seed", i)
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	config := DefaultConfig()
	config.Count = 50

	a := NewDataGenerator(1).Generate(config)
	b := NewDataGenerator(2).Generate(config)

	same := true
	for i := range a.Candles {
		if a.Candles[i].Close != b.Candles[i].Close {
			same = false
			break
		}
	}

	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestDataGenerator_GenerateTradingDays(t *testing.T) {
	config := DefaultConfig()
	// 2024-06-07 is a Friday, so the run spans a weekend.
	config.StartTime = time.Date(2024, 6, 7, 0, 0, 0, 0, config.Location)

	series := NewDataGenerator(3).GenerateTradingDays(config, 2, 9*time.Hour, 10*time.Hour)

	// 09:00, 09:15, 09:30, 09:45, 10:00 on two days
	if len(series.Candles) != 10 {
		t.Fatalf("expected 10 candles, got %d", len(series.Candles))
	}

	for _, c := range series.Candles {
		if wd := c.Time.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("unexpected weekend candle at %v", c.Time)
		}
	}

	if got := series.Candles[5].Time; !got.Equal(time.Date(2024, 6, 10, 9, 0, 0, 0, config.Location)) {
		t.Errorf("expected second day to start on Monday 09:00, got %v", got)
	}
}

func TestGenerateWeek(t *testing.T) {
	series := GenerateWeek("RELIANCE.NS")

	// 29 bars from 09:00 to 16:00 on five days
	if len(series.Candles) != 5*29 {
		t.Errorf("expected %d candles, got %d", 5*29, len(series.Candles))
	}

	if series.Symbol != "RELIANCE.NS" {
		t.Errorf("expected symbol RELIANCE.NS, got %s", series.Symbol)
	}
}

func TestGenerateMultiSymbol(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	all := NewDataGenerator(42).GenerateMultiSymbol([]string{"TCS.NS", "INFY.NS"}, config)

	if len(all) != 2 {
		t.Fatalf("expected 2 series, got %d", len(all))
	}

	if all[0].Symbol != "TCS.NS" || all[1].Symbol != "INFY.NS" {
		t.Errorf("unexpected symbols %s, %s", all[0].Symbol, all[1].Symbol)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Interval != 15*time.Minute {
		t.Errorf("expected 15m interval, got %v", config.Interval)
	}

	if config.Location == nil {
		t.Error("expected a location")
	}
}
