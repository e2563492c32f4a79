package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{name: "valid limit only", cfg: Config{Limit: 10}},
		{name: "valid offset only", cfg: Config{Offset: 5}},
		{name: "valid limit and offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "valid tail only", cfg: Config{Tail: 10}},
		{name: "tail ignores offset (valid)", cfg: Config{Tail: 10, Offset: 5}},
		{name: "limit and tail mutually exclusive", cfg: Config{Limit: 10, Tail: 5}, wantErr: true, errMsg: "mutually exclusive"},
		{name: "negative limit invalid", cfg: Config{Limit: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative offset invalid", cfg: Config{Offset: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative tail invalid", cfg: Config{Tail: -1}, wantErr: true, errMsg: "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func parse(t *testing.T, s string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestApplyToArray(t *testing.T) {
	arr := `[0,1,2,3,4,5,6,7,8,9]`
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"inactive", Config{}, `[0,1,2,3,4,5,6,7,8,9]`},
		{"limit", Config{Limit: 3}, `[0,1,2]`},
		{"offset", Config{Offset: 7}, `[7,8,9]`},
		{"offset and limit", Config{Offset: 2, Limit: 3}, `[2,3,4]`},
		{"limit past end", Config{Offset: 8, Limit: 5}, `[8,9]`},
		{"offset past end", Config{Offset: 20}, `[]`},
		{"tail", Config{Tail: 2}, `[8,9]`},
		{"tail larger than array", Config{Tail: 20}, arr},
		{"tail ignores offset", Config{Tail: 3, Offset: 5}, `[7,8,9]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Apply(parse(t, arr))
			assert.Equal(t, tt.want, jsonvalue.Marshal(got))
		})
	}
}

func TestApplyToObjectKeepsOrder(t *testing.T) {
	obj := parse(t, `{"z":1,"a":2,"m":3}`)
	assert.Equal(t, `{"z":1,"a":2}`, jsonvalue.Marshal(Config{Limit: 2}.Apply(obj)))
	assert.Equal(t, `{"m":3}`, jsonvalue.Marshal(Config{Tail: 1}.Apply(obj)))
	assert.Equal(t, `{"a":2,"m":3}`, jsonvalue.Marshal(Config{Offset: 1}.Apply(obj)))
}

func TestApplyToScalar(t *testing.T) {
	for _, v := range []jsonvalue.Value{jsonvalue.Null(), jsonvalue.String("x"), jsonvalue.Int(4)} {
		assert.True(t, jsonvalue.Equal(v, Config{Limit: 1}.Apply(v)))
	}
}

func TestApplyEmptyContainers(t *testing.T) {
	assert.Equal(t, `[]`, jsonvalue.Marshal(Config{Limit: 10}.Apply(parse(t, `[]`))))
	assert.Equal(t, `{}`, jsonvalue.Marshal(Config{Limit: 10}.Apply(parse(t, `{}`))))
}
