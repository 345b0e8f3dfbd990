package dataset_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/paceline/internal/adapters/dataset"
	"github.com/okian/paceline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const twoSessions = `[
  {"heart_rate": [120, 121], "speed": [9.5, 9.6], "timestamp": [1000, 1001], "gender": "f"},
  {"heart_rate": [140, null, 142, 143], "speed": [11, 11.2, 11.4, 11.6], "timestamp": [2003, 2001, 2000, 2002]}
]`

func TestJSONLoader(t *testing.T) {
	ctx := context.Background()

	Convey("Given an array of sessions", t, func() {
		path := writeFile(t, "sessions.json", twoSessions)

		Convey("When loading session 1", func() {
			records, err := dataset.NewJSONLoader(path, 1).Load(ctx)

			Convey("Then its raw records come back in file order", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 4)
				So(records[0], ShouldResemble, model.Record{Timestamp: 2003, HeartRate: 140, Speed: 11})
				So(math.IsNaN(records[1].HeartRate), ShouldBeTrue)
			})

			Convey("And the series is ordered and cleaned", func() {
				s, err := dataset.LoadSeries(ctx, dataset.NewJSONLoader(path, 1))
				So(err, ShouldBeNil)
				So(s.Len(), ShouldEqual, 3)
				first, _ := s.At(0)
				So(first, ShouldResemble, model.Sample{Timestamp: 2000, OriginTimestamp: 0, HeartRate: 142, Speed: 11.4})
			})
		})

		Convey("When the session index is out of bounds", func() {
			_, err := dataset.NewJSONLoader(path, 2).Load(ctx)
			So(errors.Is(err, dataset.ErrSessionNotFound), ShouldBeTrue)
			_, err = dataset.NewJSONLoader(path, -1).Load(ctx)
			So(errors.Is(err, dataset.ErrSessionNotFound), ShouldBeTrue)
		})

		Convey("When loading the same session twice", func() {
			a, errA := dataset.LoadSeries(ctx, dataset.NewJSONLoader(path, 1))
			b, errB := dataset.LoadSeries(ctx, dataset.NewJSONLoader(path, 1))

			Convey("Then both series are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Samples(), ShouldResemble, b.Samples())
			})
		})
	})

	Convey("Given a single session object", t, func() {
		path := writeFile(t, "one.json", `{"heart_rate": [130], "speed": [10], "timestamp": [5]}`)

		Convey("Then it is loaded regardless of the session id", func() {
			records, err := dataset.NewJSONLoader(path, 35).Load(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []model.Record{{Timestamp: 5, HeartRate: 130, Speed: 10}})
		})
	})

	Convey("Given sessions wrapped in an object", t, func() {
		path := writeFile(t, "wrapped.json", `{"sessions": `+twoSessions+`}`)

		Convey("Then the wrapped array is indexed", func() {
			records, err := dataset.NewJSONLoader(path, 0).Load(ctx)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)
		})
	})

	Convey("Given a session without speed", t, func() {
		path := writeFile(t, "nospeed.json", `[{"heart_rate": [1], "timestamp": [1], "tar_derived_speed": [2]}]`)

		Convey("Then the error names what is missing and what is available", func() {
			_, err := dataset.NewJSONLoader(path, 0).Load(ctx)
			So(errors.Is(err, dataset.ErrMissingFields), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "speed")
			So(err.Error(), ShouldContainSubstring, "tar_derived_speed")
		})
	})

	Convey("Given columns of different length", t, func() {
		path := writeFile(t, "ragged.json", `[{"heart_rate": [1, 2], "speed": [1], "timestamp": [1, 2]}]`)
		_, err := dataset.NewJSONLoader(path, 0).Load(ctx)
		So(errors.Is(err, dataset.ErrLengthMismatch), ShouldBeTrue)
	})

	Convey("Given malformed documents", t, func() {
		for name, content := range map[string]string{
			"empty.json":  "  ",
			"scalar.json": "42",
			"broken.json": "[{",
			"item.json":   "[1, 2]",
		} {
			path := writeFile(t, name, content)
			_, err := dataset.NewJSONLoader(path, 0).Load(ctx)
			So(errors.Is(err, dataset.ErrMalformed), ShouldBeTrue)
		}
	})

	Convey("Given a missing file", t, func() {
		_, err := dataset.NewJSONLoader(filepath.Join(t.TempDir(), "nope.json"), 0).Load(ctx)
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}

func TestJSONLoader_SessionIDs(t *testing.T) {
	Convey("Given sessions that carry ids", t, func() {
		ctx := context.Background()
		path := writeFile(t, "ids.json", `[
			{"id": 35, "timestamp": [1, 2], "heart_rate": [140, 141], "speed": [10, 11]},
			{"id": 7, "timestamp": [5], "heart_rate": [150], "speed": [12]}
		]`)

		Convey("The session is selected by id, not by position", func() {
			records, err := dataset.NewJSONLoader(path, 7).Load(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []model.Record{{Timestamp: 5, HeartRate: 150, Speed: 12}})

			records, err = dataset.NewJSONLoader(path, 35).Load(ctx)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)
		})

		Convey("A position that is not an id is not found", func() {
			_, err := dataset.NewJSONLoader(path, 1).Load(ctx)
			So(errors.Is(err, dataset.ErrSessionNotFound), ShouldBeTrue)
		})
	})

	Convey("A non-integer id is malformed", t, func() {
		path := writeFile(t, "badid.json", `[{"id": "x", "timestamp": [1], "heart_rate": [140], "speed": [10]}]`)
		_, err := dataset.NewJSONLoader(path, 0).Load(context.Background())
		So(errors.Is(err, dataset.ErrMalformed), ShouldBeTrue)
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given sessions with a missing value", t, func() {
		path := filepath.Join(t.TempDir(), "out.json")
		sessions := []dataset.Session{
			{ID: 0, Records: []model.Record{{Timestamp: 1, HeartRate: 120, Speed: 9}}},
			{ID: 1, Records: []model.Record{
				{Timestamp: 10, HeartRate: 130, Speed: 10},
				{Timestamp: 11, HeartRate: math.NaN(), Speed: 10.5},
			}},
		}

		Convey("When writing and loading them back", func() {
			So(dataset.WriteJSON(path, sessions), ShouldBeNil)
			records, err := dataset.NewJSONLoader(path, 1).Load(context.Background())

			Convey("Then values survive and missing values stay missing", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(records[0], ShouldResemble, model.Record{Timestamp: 10, HeartRate: 130, Speed: 10})
				So(math.IsNaN(records[1].HeartRate), ShouldBeTrue)
			})
		})

		Convey("When the sessions are numbered from a non-zero id", func() {
			sessions[0].ID, sessions[1].ID = 35, 36
			So(dataset.WriteJSON(path, sessions), ShouldBeNil)

			records, err := dataset.NewJSONLoader(path, 35).Load(context.Background())
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []model.Record{{Timestamp: 1, HeartRate: 120, Speed: 9}})
		})
	})
}
