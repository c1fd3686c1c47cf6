package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   Value[string]  `json:"name"`
	Phone  Value[string]  `json:"phone"`
	Age    Value[int]     `json:"age"`
	Height Value[float64] `json:"height_cm"`
}

func TestValue_UnmarshalJSON(t *testing.T) {
	t.Run("absent fields stay unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

		assert.False(t, p.Name.Set)
		assert.Nil(t, p.Name.Ptr())
	})

	t.Run("explicit null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"phone": null}`), &p))

		assert.True(t, p.Phone.Set)
		assert.True(t, p.Phone.Null)
		assert.Nil(t, p.Phone.Ptr())
	})

	t.Run("plain values", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Jane","age":28,"height_cm":172.5}`), &p))

		require.NotNil(t, p.Name.Ptr())
		assert.Equal(t, "Jane", *p.Name.Ptr())
		assert.Equal(t, 28, p.Age.V)
		assert.InDelta(t, 172.5, p.Height.V, 0.0001)
	})

	t.Run("numbers encoded as strings", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"age":"28","height_cm":" 172.5 "}`), &p))

		assert.Equal(t, 28, p.Age.V)
		assert.InDelta(t, 172.5, p.Height.V, 0.0001)
	})

	t.Run("blank string for a number is null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"age":""}`), &p))

		assert.True(t, p.Age.Set)
		assert.True(t, p.Age.Null)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var p payload
		err := json.Unmarshal([]byte(`{"age":"twenty"}`), &p)
		assert.Error(t, err)
	})
}

func TestValue_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(payload{Name: Of("Jane"), Phone: Null[string]()})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Jane","phone":null,"age":null,"height_cm":null}`, string(out))
}
