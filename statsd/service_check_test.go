package statsd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCheckEncode(t *testing.T) {
	matrix := []struct {
		serviceCheck *ServiceCheck
		encoded      string
	}{
		{
			NewServiceCheck("DataCatService", Ok),
			`_sc|DataCatService|0`,
		}, {
			NewServiceCheck("DataCatService", Warn),
			`_sc|DataCatService|1`,
		}, {
			NewServiceCheck("DataCatService", Critical),
			`_sc|DataCatService|2`,
		}, {
			NewServiceCheck("DataCatService", Unknown),
			`_sc|DataCatService|3`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Hostname: "DataStation.Cat"},
			`_sc|DataCatService|0|h:DataStation.Cat`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Hostname: "DataStation.Cat", Message: "Here goes valuable message"},
			`_sc|DataCatService|0|h:DataStation.Cat|m:Here goes valuable message`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Hostname: "DataStation.Cat", Message: "Here are some cyrillic chars: к л м н о п р с т у ф х ц ч ш"},
			`_sc|DataCatService|0|h:DataStation.Cat|m:Here are some cyrillic chars: к л м н о п р с т у ф х ц ч ш`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Hostname: "DataStation.Cat", Message: "Here goes valuable message", Tags: []string{"host:foo", "app:bar"}},
			`_sc|DataCatService|0|h:DataStation.Cat|#host:foo,app:bar|m:Here goes valuable message`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Hostname: "DataStation.Cat", Message: "Here goes \n that should be escaped", Tags: []string{"host:foo", "app:b\nar"}},
			`_sc|DataCatService|0|h:DataStation.Cat|#host:foo,app:bar|m:Here goes \n that should be escaped`,
		}, {
			&ServiceCheck{Name: "DataCatService", Status: Ok, Timestamp: time.Unix(1700000000, 0)},
			`_sc|DataCatService|0|d:1700000000`,
		},
	}

	for _, m := range matrix {
		scEncoded, err := m.serviceCheck.Encode()
		require.NoError(t, err)
		assert.Equal(t, m.encoded, scEncoded)
	}
}

func TestNameMissing(t *testing.T) {
	sc := NewServiceCheck("", Ok)
	_, err := sc.Encode()
	require.Error(t, err)
	assert.Equal(t, "statsd.ServiceCheck name is required", err.Error())
}

func TestUnknownStatus(t *testing.T) {
	sc := NewServiceCheck("sc", ServiceCheckStatus(5))
	_, err := sc.Encode()
	require.Error(t, err)
	assert.Equal(t, "statsd.ServiceCheck status has invalid value", err.Error())
}

func TestParseServiceCheckStatus(t *testing.T) {
	for s, expected := range map[string]ServiceCheckStatus{"ok": Ok, "warning": Warn, "critical": Critical, "unknown": Unknown} {
		status, err := ParseServiceCheckStatus(s)
		require.NoError(t, err)
		assert.Equal(t, expected, status)
	}
	_, err := ParseServiceCheckStatus("fine")
	assert.Error(t, err)
}

func TestServiceCheckParse(t *testing.T) {
	sc := &ServiceCheck{Name: "db", Status: Critical, Hostname: "h1", Message: "down\nhard", Tags: []string{"a:1"}}
	encoded, err := sc.Encode()
	require.NoError(t, err)

	d, err := ParseDatagram(encoded)
	require.NoError(t, err)
	assert.Equal(t, ServiceCheckType, d.Type())
	assert.Equal(t, "db", d.Name())
	assert.Equal(t, "2", d.Value())
	assert.Equal(t, "h1", d.Hostname())
	assert.Equal(t, "down\nhard", d.Message())
	assert.Equal(t, []string{"a:1"}, d.Tags())

	for _, source := range []string{"_sc||0", "_sc|db|4", "_sc|db|x", "_sc|db|0|m:x|h:y"} {
		_, err := ParseDatagram(source)
		assert.ErrorIs(t, err, ErrInvalidDatagram, source)
	}
}
