package logsift_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/logsift"
	"github.com/hupe1980/logsift/model"
)

// Example demonstrates ingesting records and filtering them by text pattern.
func Example() {
	sifter, err := logsift.New(
		logsift.WithCapacity(1000),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer sifter.Close()

	// Ingest a few records
	for _, event := range []string{"SEND", "ERROR", "recv", "Error2"} {
		if err := sifter.Push(model.NewRecord(map[string]string{"event": event})); err != nil {
			log.Fatal(err)
		}
	}
	if err := sifter.Flush(); err != nil {
		log.Fatal(err)
	}

	// Case-insensitive text filter on the event field
	if err := sifter.SetTextFilter("event", "err"); err != nil {
		log.Fatal(err)
	}
	if err := sifter.Flush(); err != nil {
		log.Fatal(err)
	}

	filtered, err := sifter.Filtered()
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range filtered {
		event, _ := r.Field("event")
		fmt.Println(event)
	}
	// Output:
	// ERROR
	// Error2
}

// Example_selection demonstrates constraining a field to a set of values
// discovered through the distinct-value index.
func Example_selection() {
	sifter, err := logsift.New()
	if err != nil {
		log.Fatal(err)
	}
	defer sifter.Close()

	records := []*model.Record{
		model.NewRecord(map[string]string{"source": "api", "event": "SEND"}),
		model.NewRecord(map[string]string{"source": "gateway", "event": "SEND"}),
		model.NewRecord(map[string]string{"source": "api", "event": "RECV"}),
	}
	if err := sifter.PushBatch(records); err != nil {
		log.Fatal(err)
	}
	if err := sifter.Flush(); err != nil {
		log.Fatal(err)
	}

	// Candidates for a selection menu
	values, err := sifter.DistinctValues("source")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(values)

	// Keep only api records
	if err := sifter.SetSelection("source", []string{"api"}); err != nil {
		log.Fatal(err)
	}
	if err := sifter.Flush(); err != nil {
		log.Fatal(err)
	}
	fmt.Println(sifter.FilteredCount(), "of", sifter.TotalCount())
	// Output:
	// [api gateway]
	// 2 of 3
}
