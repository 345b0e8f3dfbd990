package service_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	service "github.com/okian/paceline/internal/app"
	"github.com/okian/paceline/internal/domain/model"
	"github.com/okian/paceline/internal/domain/predictor"
	"github.com/okian/paceline/internal/domain/series"
	"github.com/okian/paceline/internal/domain/types"
	"github.com/okian/paceline/internal/domain/window"
	"github.com/okian/paceline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// tenSamples has speed i and heart rate 100+i at origin offset i.
func tenSamples(t *testing.T) *series.Series {
	t.Helper()
	samples := make([]model.Sample, 10)
	for i := range samples {
		samples[i] = model.Sample{
			Timestamp:       int64(1000 + i),
			OriginTimestamp: int64(i),
			HeartRate:       float64(100 + i),
			Speed:           float64(i),
		}
	}
	s, err := series.New(samples)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

var threeByTwo = predictor.ModelConfig{SamplingRate: 1, WindowDuration: 3, PredictionDuration: 2}

// recordingModel returns the sum of the input speeds and keeps the last input.
type recordingModel struct {
	mu   sync.Mutex
	last [][]float64
	err  error
}

func (m *recordingModel) Predict(_ context.Context, input [][]float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = input
	if m.err != nil {
		return 0, m.err
	}
	var sum float64
	for _, row := range input {
		sum += row[0]
	}
	return sum, nil
}

func startedService(t *testing.T, m predictor.Model, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithSeries(tenSamples(t)), service.WithModel(m, threeByTwo)}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with an in-memory series and model", t, func() {
		svc := service.New(service.WithSeries(tenSamples(t)), service.WithModel(&recordingModel{}, threeByTwo))
		defer svc.Stop()

		Convey("When it has not been started", func() {
			Convey("Then it is not ready and queries report not initialized", func() {
				So(svc.Ready(), ShouldBeFalse)
				_, err := svc.Predict(context.Background(), 5)
				So(errors.Is(err, service.ErrNotInitialized), ShouldBeTrue)
				_, _, err = svc.Lookup(context.Background(), 1)
				So(errors.Is(err, service.ErrNotInitialized), ShouldBeTrue)
				_, err = svc.Series(context.Background(), 1)
				So(errors.Is(err, service.ErrNotInitialized), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it becomes ready", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
			})

			Convey("And stats describe the loaded state", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["seriesLength"], ShouldEqual, 10)
				So(stats["windowSamples"], ShouldEqual, 3)
				So(stats["advanceSamples"], ShouldEqual, 2)
				So(stats["firstPredictIdx"], ShouldEqual, 2)
				So(stats["lastIdx"], ShouldEqual, 9)
				So(stats["lastOriginTimestamp"], ShouldEqual, int64(9))
			})

			Convey("And stopping unpublishes it", func() {
				svc.Stop()
				So(svc.Ready(), ShouldBeFalse)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a model configuration that cannot produce a window", t, func() {
		svc := service.New(
			service.WithSeries(tenSamples(t)),
			service.WithModel(&recordingModel{}, predictor.ModelConfig{SamplingRate: 0, WindowDuration: 3, PredictionDuration: 1}),
		)

		Convey("Then start fails and the service stays uninitialized", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, predictor.ErrInvalidConfiguration), ShouldBeTrue)
			So(svc.Ready(), ShouldBeFalse)
			So(svc.StartError(), ShouldNotBeNil)
			So(svc.GetStats()["startError"], ShouldNotBeEmpty)

			_, err = svc.Predict(context.Background(), 5)
			So(service.Classify(err), ShouldEqual, service.CodeNotInitialized)
		})
	})

	Convey("Given a dataset path that does not exist", t, func() {
		svc := service.New(
			service.WithDatasetPath(filepath.Join(t.TempDir(), "missing.json"), 0),
			service.WithModel(&recordingModel{}, threeByTwo),
		)

		Convey("Then start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
			So(svc.Ready(), ShouldBeFalse)
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service over ten samples, window 3, advance 2", t, func() {
		m := &recordingModel{}
		svc := startedService(t, m)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When predicting at idx 5", func() {
			p, err := svc.Predict(ctx, 5)

			Convey("Then the model sees samples 3, 4 and 5 as (speed, heart_rate)", func() {
				So(err, ShouldBeNil)
				So(m.last, ShouldResemble, [][]float64{{3, 103}, {4, 104}, {5, 105}})
			})

			Convey("And the response points at idx 7", func() {
				So(p, ShouldResemble, types.Prediction{
					PredictedSpeed:                 12,
					NextIdx:                        7,
					CurrentInputEndOriginTimestamp: 5,
					NextIdxOriginTimestamp:         7,
				})
			})
		})

		Convey("When predicting at the first complete window", func() {
			p, err := svc.Predict(ctx, 2)
			So(err, ShouldBeNil)
			So(p.NextIdx, ShouldEqual, 4)
		})

		Convey("When predicting near the end", func() {
			p8, err8 := svc.Predict(ctx, 8)
			p9, err9 := svc.Predict(ctx, 9)

			Convey("Then next_idx saturates at the last index", func() {
				So(err8, ShouldBeNil)
				So(err9, ShouldBeNil)
				So(p8.NextIdx, ShouldEqual, 9)
				So(p9.NextIdx, ShouldEqual, 9)
				So(p9.NextIdxOriginTimestamp, ShouldEqual, 9)
			})
		})

		Convey("When the window would reach before the start", func() {
			_, err := svc.Predict(ctx, 1)

			Convey("Then it fails without calling the model", func() {
				So(errors.Is(err, window.ErrInsufficientWindow), ShouldBeTrue)
				So(service.Classify(err), ShouldEqual, service.CodeInsufficientWindow)
				So(m.last, ShouldBeNil)
			})
		})

		Convey("When idx is outside the series", func() {
			for _, idx := range []int{-1, 10, 1 << 30} {
				_, err := svc.Predict(ctx, idx)
				So(service.Classify(err), ShouldEqual, service.CodeIndexOutOfRange)
			}
		})

		Convey("When the same idx is requested twice", func() {
			a, errA := svc.Predict(ctx, 6)
			b, errB := svc.Predict(ctx, 6)
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("When many requests arrive concurrently", func() {
			var wg sync.WaitGroup
			errs := make([]error, 32)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = svc.Predict(ctx, 2+i%8)
				}(i)
			}
			wg.Wait()
			for _, err := range errs {
				So(err, ShouldBeNil)
			}
		})
	})

	Convey("Given a model that fails", t, func() {
		svc := startedService(t, &recordingModel{err: errors.New("gpu fell off")}, service.WithSerializedInference(true))
		defer svc.Stop()

		Convey("Then the failure is an inference error", func() {
			_, err := svc.Predict(context.Background(), 5)
			So(errors.Is(err, service.ErrInference), ShouldBeTrue)
			So(service.Classify(err), ShouldEqual, service.CodeInferenceFailed)
		})
	})
}

func TestService_Lookup(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t, &recordingModel{})
		defer svc.Stop()
		ctx := context.Background()

		Convey("When looking up an offset between two samples", func() {
			dp, idx, err := svc.Lookup(ctx, 4.5)

			Convey("Then the earlier sample wins the tie", func() {
				So(err, ShouldBeNil)
				So(idx, ShouldEqual, 4)
				So(dp, ShouldResemble, types.DataPoint{Timestamp: 1004, OriginTimestamp: 4, HeartRate: 104, Speed: 4})
			})
		})

		Convey("When looking up beyond either end", func() {
			_, lo, _ := svc.Lookup(ctx, -100)
			_, hi, _ := svc.Lookup(ctx, 1e9)
			So(lo, ShouldEqual, 0)
			So(hi, ShouldEqual, 9)
		})

		Convey("When the offset is not finite", func() {
			_, _, err := svc.Lookup(ctx, math.Inf(1))
			So(service.Classify(err), ShouldEqual, service.CodeInvalidParameter)
		})
	})
}

func TestService_Series(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()

		Convey("When asking for every sample", func() {
			svc := startedService(t, &recordingModel{})
			defer svc.Stop()
			cols, err := svc.Series(ctx, 1)
			So(err, ShouldBeNil)
			So(cols.Step, ShouldEqual, 1)
			So(len(cols.Indices), ShouldEqual, 10)
			So(cols.Speed[9], ShouldEqual, 9)
		})

		Convey("When downsampling", func() {
			svc := startedService(t, &recordingModel{})
			defer svc.Stop()
			cols, err := svc.Series(ctx, 3)
			So(err, ShouldBeNil)
			So(cols.Indices, ShouldResemble, []int{0, 3, 6, 9})
			So(cols.OriginTimestamp, ShouldResemble, []int64{0, 3, 6, 9})
			So(cols.HeartRate, ShouldResemble, []float64{100, 103, 106, 109})
		})

		Convey("When the point cap is smaller than the series", func() {
			svc := startedService(t, &recordingModel{}, service.WithSeriesMaxPoints(4))
			defer svc.Stop()
			cols, err := svc.Series(ctx, 1)
			So(err, ShouldBeNil)
			So(cols.Step, ShouldEqual, 3)
			So(len(cols.Indices), ShouldBeLessThanOrEqualTo, 4)
		})

		Convey("When the step and the point cap are at the integer limit", func() {
			svc := startedService(t, &recordingModel{}, service.WithSeriesMaxPoints(math.MaxInt))
			defer svc.Stop()
			cols, err := svc.Series(ctx, math.MaxInt)
			So(err, ShouldBeNil)
			So(cols.Step, ShouldEqual, math.MaxInt)
			So(cols.Indices, ShouldResemble, []int{0})
			So(cols.Speed, ShouldResemble, []float64{0})
		})

		Convey("When the step is not positive", func() {
			svc := startedService(t, &recordingModel{})
			defer svc.Stop()
			_, err := svc.Series(ctx, 0)
			So(errors.Is(err, service.ErrInvalidStep), ShouldBeTrue)
		})
	})
}

func TestService_FromFiles(t *testing.T) {
	Convey("Given a JSON dataset and a dense model manifest on disk", t, func() {
		dir := t.TempDir()
		dataPath := filepath.Join(dir, "sessions.json")
		modelPath := filepath.Join(dir, "model.json")
		writeTestFile(t, dataPath, `[
  {"timestamp": [1], "heart_rate": [1], "speed": [1]},
  {"timestamp": [100, 101, 102, 103, 104], "heart_rate": [140, 141, 142, 143, 144], "speed": [10, 11, 12, 13, 14]}
]`)
		writeTestFile(t, modelPath, `{
  "sampling_rate": 1, "window_duration": 2, "prediction_duration": 1,
  "backend": "dense",
  "layers": [{"weights": [[0, 0, 1, 0]], "bias": [0.5], "activation": "linear"}]
}`)

		svc := service.New(
			service.WithDatasetPath(dataPath, 1),
			service.WithModelPath(modelPath),
		)
		defer svc.Stop()

		Convey("When the service starts", func() {
			err := svc.Start(context.Background())
			So(err, ShouldBeNil)

			Convey("Then predictions run through the dense network", func() {
				p, err := svc.Predict(context.Background(), 3)
				So(err, ShouldBeNil)
				So(p.PredictedSpeed, ShouldAlmostEqual, 13.5, 1e-12)
				So(p.NextIdx, ShouldEqual, 4)
				So(p.CurrentInputEndOriginTimestamp, ShouldEqual, 3)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given errors from every layer", t, func() {
		cases := map[error]string{
			service.ErrNotInitialized:         service.CodeNotInitialized,
			series.ErrIndexOutOfRange:         service.CodeIndexOutOfRange,
			window.ErrInsufficientWindow:      service.CodeInsufficientWindow,
			predictor.ErrInvalidConfiguration: service.CodeConfiguration,
			predictor.ErrInvalidInputShape:    service.CodeInvalidInputShape,
			series.ErrNonFiniteTime:           service.CodeInvalidParameter,
			service.ErrInference:              service.CodeInferenceFailed,
			errors.New("anything else"):       service.CodeInternal,
		}
		cases[errors.Join(service.ErrInference, predictor.ErrInvalidInputShape)] = service.CodeInvalidInputShape
		for err, code := range cases {
			So(service.Classify(err), ShouldEqual, code)
		}
	})
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
