package statsd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tilinna/clock"
)

// StoreMagic starts every store file.
const StoreMagic = "STATSBv1"

const (
	storeNameRecord int16 = -1
	storeTimeRecord int16 = -2
)

// ErrNotStoreFile is returned by NewStoreReader for input not starting with StoreMagic.
var ErrNotStoreFile = errors.New("statsd: not a statsb file")

var storeByteOrder = binary.LittleEndian

// StoreSink appends metrics to a compact binary log. Each metric name is
// written once with an id, samples then reference the id. A time record is
// written whenever more than a second passed since the previous one.
// Counters are stored as int32, timings, gauges and histograms as float32.
// Other types are skipped.
type StoreSink struct {
	ctx    context.Context
	dir    string
	logger logrus.FieldLogger

	mu         sync.Mutex
	w          *bufio.Writer
	file       *os.File
	names      map[string]int16
	nextID     int16
	lastTime   int64
	nextReopen time.Time
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink writes the log to w, starting with StoreMagic.
func NewStoreSink(w io.Writer, logger logrus.FieldLogger) (*StoreSink, error) {
	s := newStoreSink(context.Background(), "", logger)
	s.w = bufio.NewWriter(w)
	if _, err := s.w.WriteString(StoreMagic); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenStoreSink writes the log to dir/<YYYY-MM-DD>/<pid>.statsb, switching
// file at midnight. ctx carries the clock.
func OpenStoreSink(ctx context.Context, dir string, logger logrus.FieldLogger) (*StoreSink, error) {
	s := newStoreSink(ctx, dir, logger)
	if err := s.reopen(); err != nil {
		return nil, err
	}
	return s, nil
}

func newStoreSink(ctx context.Context, dir string, logger logrus.FieldLogger) *StoreSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StoreSink{
		ctx:    ctx,
		dir:    dir,
		logger: logger.WithField("component", "store"),
	}
}

func (s *StoreSink) reopen() error {
	now := clock.FromContext(s.ctx).Now()
	basedir := filepath.Join(s.dir, now.Format("2006-01-02"))
	if err := os.MkdirAll(basedir, 0o755); err != nil {
		return err
	}
	if err := s.closeFile(); err != nil {
		s.logger.WithError(err).Warn("Could not close the previous store file")
	}
	file, err := os.OpenFile(filepath.Join(basedir, fmt.Sprintf("%d.statsb", processID())), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	s.file = file
	s.w = bufio.NewWriter(file)
	if stat.Size() == 0 {
		if _, err := s.w.WriteString(StoreMagic); err != nil {
			return err
		}
	}
	year, month, day := now.Date()
	s.nextReopen = time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
	s.names = make(map[string]int16)
	s.nextID = 0
	s.lastTime = 0
	return nil
}

func (s *StoreSink) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.w.Flush()
	if closeErr := s.file.Close(); err == nil {
		err = closeErr
	}
	s.file = nil
	return err
}

func (s *StoreSink) Sample(rate float64) bool { return shouldSample(rate) }

// Emit stores every datagram of the packet.
func (s *StoreSink) Emit(packet string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := clock.FromContext(s.ctx).Now()
	if s.file != nil && !now.Before(s.nextReopen) {
		if err := s.reopen(); err != nil {
			s.logger.WithError(err).Error("Could not open the store file")
			return
		}
	}
	for _, line := range strings.Split(packet, "\n") {
		if line == "" {
			continue
		}
		if err := s.store(NewDatagram(line), now); err != nil {
			s.logger.WithError(err).WithField("datagram", line).Debug("Datagram not stored")
		}
	}
}

func (s *StoreSink) store(d *Datagram, now time.Time) error {
	if err := d.Parse(); err != nil {
		return err
	}
	t := d.Type()
	if t != Count && t != Timing && t != Gauge && t != Histogram {
		return fmt.Errorf("%w: type %s metrics are not supported by the store", ErrUnsupportedType, t)
	}
	values, err := d.Values()
	if err != nil {
		return err
	}
	if s.names == nil {
		s.names = make(map[string]int16)
	}

	id, ok := s.names[d.Name()]
	if !ok {
		if s.nextID == math.MaxInt16 {
			return errors.New("statsd: store name table is full")
		}
		if len(d.Name()) > math.MaxInt16 {
			return errors.New("statsd: metric name too long for the store")
		}
		s.nextID++
		id = s.nextID
		s.names[d.Name()] = id
		s.writeName(id, d.Name(), t)
	}
	if unix := now.Unix(); unix-s.lastTime > 1 {
		s.writeTime(unix)
		s.lastTime = unix
	}
	for _, value := range values {
		s.writeMetric(id, t, value)
	}
	return nil
}

// putStoreInt16 writes v in two's complement. Record kinds are negative.
func putStoreInt16(b []byte, v int16) {
	storeByteOrder.PutUint16(b, uint16(v))
}

func (s *StoreSink) writeName(id int16, name string, t MetricType) {
	var header [6]byte
	putStoreInt16(header[0:], storeNameRecord)
	putStoreInt16(header[2:], id)
	storeByteOrder.PutUint16(header[4:], uint16(len(name)))
	s.w.Write(header[:])
	s.w.WriteString(name)
	typ := [2]byte{' ', ' '}
	copy(typ[:], t)
	s.w.Write(typ[:])
}

func (s *StoreSink) writeTime(unix int64) {
	var record [6]byte
	putStoreInt16(record[0:], storeTimeRecord)
	storeByteOrder.PutUint32(record[2:], uint32(unix))
	s.w.Write(record[:])
}

func (s *StoreSink) writeMetric(id int16, t MetricType, value float64) {
	var record [6]byte
	putStoreInt16(record[0:], id)
	if t == Count {
		storeByteOrder.PutUint32(record[2:], uint32(int32(value)))
	} else {
		storeByteOrder.PutUint32(record[2:], math.Float32bits(float32(value)))
	}
	s.w.Write(record[:])
}

// Flush writes the buffered records.
func (s *StoreSink) Flush(bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.logger.WithError(err).Warn("Could not flush the store")
	}
}

// Close flushes, and closes the file in directory mode.
func (s *StoreSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return s.closeFile()
	}
	return s.w.Flush()
}

type storeName struct {
	name       string
	metricType MetricType
}

// StoreReader decodes a log written by a StoreSink.
type StoreReader struct {
	r     *bufio.Reader
	names map[int16]storeName
	time  time.Time
}

// NewStoreReader checks the magic of r and returns a reader positioned on
// the first record.
func NewStoreReader(r io.Reader) (*StoreReader, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(StoreMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != StoreMagic {
		return nil, ErrNotStoreFile
	}
	return &StoreReader{r: br, names: make(map[int16]storeName)}, nil
}

// Time is the time of the last time record read.
func (r *StoreReader) Time() time.Time { return r.time }

// Next returns the next sample as name:value|type, or io.EOF at the end of
// the log.
func (r *StoreReader) Next() (string, error) {
	for {
		var kind int16
		if err := binary.Read(r.r, storeByteOrder, &kind); err != nil {
			return "", err
		}
		switch kind {
		case storeTimeRecord:
			var unix uint32
			if err := binary.Read(r.r, storeByteOrder, &unix); err != nil {
				return "", unexpected(err)
			}
			r.time = time.Unix(int64(unix), 0)
		case storeNameRecord:
			if err := r.readName(); err != nil {
				return "", unexpected(err)
			}
		default:
			line, err := r.readMetric(kind)
			if err != nil {
				return "", unexpected(err)
			}
			return line, nil
		}
	}
}

func (r *StoreReader) readName() error {
	var header struct {
		ID  int16
		Len int16
	}
	if err := binary.Read(r.r, storeByteOrder, &header); err != nil {
		return err
	}
	if header.Len < 0 {
		return fmt.Errorf("%w: negative name length", ErrNotStoreFile)
	}
	buf := make([]byte, int(header.Len)+2)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return err
	}
	r.names[header.ID] = storeName{
		name:       string(buf[:header.Len]),
		metricType: MetricType(bytes.TrimRight(buf[header.Len:], " \x00")),
	}
	return nil
}

func (r *StoreReader) readMetric(id int16) (string, error) {
	name, ok := r.names[id]
	if !ok {
		return "", fmt.Errorf("%w: unknown metric id %d", ErrNotStoreFile, id)
	}
	var raw uint32
	if err := binary.Read(r.r, storeByteOrder, &raw); err != nil {
		return "", err
	}
	var value string
	if name.metricType == Count {
		value = strconv.FormatInt(int64(int32(raw)), 10)
	} else {
		value = strconv.FormatFloat(float64(math.Float32frombits(raw)), 'f', -1, 32)
	}
	return name.name + ":" + value + "|" + string(name.metricType), nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
