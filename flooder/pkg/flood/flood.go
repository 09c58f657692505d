package flood

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tilinna/clock"
	"github.com/twmb/murmur3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/statsd-instrument/instrument/statsd"
	"github.com/statsd-instrument/instrument/statsd/promstats"
)

const (
	ParamAddress             = "address"
	ParamImplementation      = "implementation"
	ParamPrefix              = "prefix"
	ParamTags                = "tags"
	ParamAggregation         = "client-side-aggregation"
	ParamAggregationInterval = "aggregation-interval"
	ParamBufferCapacity      = "buffer-capacity"
	ParamMaxPacketSize       = "max-packet-size"
	ParamStatisticsInterval  = "statistics-interval"
	ParamPointsPer10Seconds  = "points-per-10seconds"
	ParamSendAtStartOfBucket = "send-at-start-of-bucket"
	ParamWorkers             = "workers"
	ParamDuration            = "duration"
	ParamStoreDir            = "store-dir"
	ParamMetricsAddress      = "metrics-address"
	ParamVerbose             = "verbose"
)

const (
	countMetric    = "flood.statsd.count"
	expectedMetric = "flood.statsd.expected"
	bucketLength   = 10 * time.Second
)

// Config describes one flood run.
type Config struct {
	Address             string
	Implementation      string
	Prefix              string
	Tags                []string
	Aggregation         bool
	AggregationInterval time.Duration
	BufferCapacity      int
	MaxPacketSize       int
	StatisticsInterval  time.Duration
	PointsPer10Seconds  int
	SendAtStartOfBucket bool
	Workers             int
	// Duration bounds the run. Zero floods until the context is cancelled.
	Duration time.Duration
	// StoreDir writes the points to a statsb log instead of the network.
	StoreDir       string
	MetricsAddress string
}

// AddFlags registers the flood flags on flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(ParamAddress, "127.0.0.1:8125", "Address of the statsd server")
	flags.String(ParamImplementation, statsd.DefaultImplementation, "Datagram dialect")
	flags.String(ParamPrefix, "", "Prefix of every metric")
	flags.StringSlice(ParamTags, []string{}, "Set tags")
	flags.Bool(ParamAggregation, false, "Enable client-side aggregation")
	flags.Duration(ParamAggregationInterval, statsd.DefaultAggregationInterval, "Client-side aggregation interval")
	flags.Int(ParamBufferCapacity, statsd.DefaultBufferCapacity, "Datagrams queued by the batched sink")
	flags.Int(ParamMaxPacketSize, 0, "Largest packet sent, 0 uses the transport default")
	flags.Duration(ParamStatisticsInterval, 0, "Interval of the batched sink statistics, 0 disables them")
	flags.Int(ParamPointsPer10Seconds, 100000, "Set points per 10 seconds")
	flags.Bool(ParamSendAtStartOfBucket, false, "Send all the points at the start of the 10 sec time bucket.")
	flags.Int(ParamWorkers, 1, "Goroutines sending points")
	flags.Duration(ParamDuration, 0, "Stop after this long, 0 runs until interrupted")
	flags.String(ParamStoreDir, "", "Write points to a statsb store in this directory")
	flags.String(ParamMetricsAddress, "", "Serve the sink statistics for Prometheus on this address")
	flags.Bool(ParamVerbose, false, "Enable verbose mode")
}

// ConfigFromViper reads a Config from v, usually bound to the flags of
// AddFlags.
func ConfigFromViper(v *viper.Viper) Config {
	return Config{
		Address:             v.GetString(ParamAddress),
		Implementation:      v.GetString(ParamImplementation),
		Prefix:              v.GetString(ParamPrefix),
		Tags:                v.GetStringSlice(ParamTags),
		Aggregation:         v.GetBool(ParamAggregation),
		AggregationInterval: v.GetDuration(ParamAggregationInterval),
		BufferCapacity:      v.GetInt(ParamBufferCapacity),
		MaxPacketSize:       v.GetInt(ParamMaxPacketSize),
		StatisticsInterval:  v.GetDuration(ParamStatisticsInterval),
		PointsPer10Seconds:  v.GetInt(ParamPointsPer10Seconds),
		SendAtStartOfBucket: v.GetBool(ParamSendAtStartOfBucket),
		Workers:             v.GetInt(ParamWorkers),
		Duration:            v.GetDuration(ParamDuration),
		StoreDir:            v.GetString(ParamStoreDir),
		MetricsAddress:      v.GetString(ParamMetricsAddress),
	}
}

// Report summarizes a flood run.
type Report struct {
	Sent    int64             `json:"sent"`
	Failed  int64             `json:"failed"`
	Elapsed time.Duration     `json:"elapsed_ns"`
	Sink    *statsd.SinkStats `json:"sink,omitempty"`
}

// clientTags describes the run, so points of different configurations can be
// told apart on the server.
func clientTags(cfg Config, transport string) []string {
	tags := []string{
		"client-side-aggregation:" + strconv.FormatBool(cfg.Aggregation),
		"buffer-capacity:" + strconv.Itoa(cfg.BufferCapacity),
		"points-per-10seconds:" + strconv.Itoa(cfg.PointsPer10Seconds),
		"send-at-start-of-bucket:" + strconv.FormatBool(cfg.SendAtStartOfBucket),
		"workers:" + strconv.Itoa(cfg.Workers),
		"transport:" + transport,
	}
	tags = append(tags, cfg.Tags...)
	h := murmur3.New32()
	for _, tag := range tags {
		_, _ = h.Write([]byte(tag))
	}
	return append(tags, "client-hash:"+strconv.FormatUint(uint64(h.Sum32()), 16))
}

func newSink(ctx context.Context, cfg Config, logger logrus.FieldLogger) (statsd.Sink, *statsd.BatchedSink, string, error) {
	if cfg.StoreDir != "" {
		sink, err := statsd.OpenStoreSink(ctx, cfg.StoreDir, logger)
		return sink, nil, "store", err
	}
	conn, err := statsd.NewConnection(cfg.Address)
	if err != nil {
		return nil, nil, "", err
	}
	options := []statsd.BatchOption{
		statsd.WithBufferCapacity(cfg.BufferCapacity),
		statsd.WithStatisticsInterval(cfg.StatisticsInterval),
		statsd.WithSinkLogger(logger),
		statsd.WithClockContext(ctx),
	}
	if cfg.MaxPacketSize > 0 {
		options = append(options, statsd.WithMaxPacketSize(cfg.MaxPacketSize))
	}
	sink, err := statsd.NewBatchedSink(conn, options...)
	if err != nil {
		return nil, nil, "", err
	}
	return sink, sink, conn.Type(), nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	return server
}

// Flood sends cfg.PointsPer10Seconds counter points every ten seconds until
// ctx is done or cfg.Duration elapsed.
func Flood(ctx context.Context, cfg Config, logger logrus.FieldLogger) (*Report, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PointsPer10Seconds < 1 {
		return nil, errors.New("flood: points-per-10seconds must be positive")
	}
	sink, batched, transport, err := newSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	options := []statsd.Option{
		statsd.WithSink(sink),
		statsd.WithImplementation(cfg.Implementation),
		statsd.WithPrefix(cfg.Prefix),
		statsd.WithDefaultTags(clientTags(cfg, transport)...),
		statsd.WithLogger(logger),
		statsd.WithContext(ctx),
	}
	if cfg.Aggregation {
		options = append(options, statsd.WithAggregation(cfg.AggregationInterval))
	}
	client, err := statsd.New(options...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close the client")
		}
	}()

	if batched != nil && cfg.MetricsAddress != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(promstats.NewCollector(batched, transport))
		server := serveMetrics(cfg.MetricsAddress, registry, logger)
		defer server.Close()
	}

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	perSecond := rate.Limit(float64(cfg.PointsPer10Seconds) / bucketLength.Seconds())
	burst := cfg.Workers
	if cfg.SendAtStartOfBucket {
		burst = cfg.PointsPer10Seconds
	}
	limiter := rate.NewLimiter(perSecond, burst)
	logger.Infof("Sending %d points per 10 seconds", cfg.PointsPer10Seconds)

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			for {
				if err := limiter.Wait(gctx); err != nil {
					return nil
				}
				if err := client.Increment(countMetric, 1); err != nil {
					failed.Add(1)
					logger.WithError(err).Debug("Failed to send a point")
					continue
				}
				sent.Add(1)
			}
		})
	}
	g.Go(func() error {
		ticker := clock.NewTicker(gctx, bucketLength)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := client.Increment(expectedMetric, float64(cfg.PointsPer10Seconds)); err != nil {
					logger.WithError(err).Warn("Failed to send the expected count")
				}
			}
		}
	})

	start := time.Now()
	if err := g.Wait(); err != nil {
		return nil, err
	}
	client.ForceFlush()

	report := &Report{
		Sent:    sent.Load(),
		Failed:  failed.Load(),
		Elapsed: time.Since(start),
	}
	if batched != nil {
		stats := batched.Stats()
		report.Sink = &stats
	}
	return report, nil
}
