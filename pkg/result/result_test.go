package result

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Status(t *testing.T) {
	t.Run("空结果为OK", func(t *testing.T) {
		r := New()
		assert.Equal(t, StatusOK, r.Status())
		assert.True(t, r.OK())
	})

	t.Run("WARN不阻断", func(t *testing.T) {
		r := New()
		r.Add(Event{Severity: SeverityWarn, Key: "SOMETHING_ODD", Message: "odd"})
		assert.Equal(t, StatusWarn, r.Status())
		assert.True(t, r.OK())
	})

	t.Run("任意ERROR即为ERROR", func(t *testing.T) {
		r := New()
		r.Add(Event{Severity: SeverityWarn, Key: "SOMETHING_ODD", Message: "odd"})
		r.AddError("AUTHOR_ID_NULL", "ID mustn't be null.")
		assert.Equal(t, StatusError, r.Status())
		assert.False(t, r.OK())
	})
}

func TestResult_MergeKeepsKeys(t *testing.T) {
	nested := Error("AUTHOR_NOT_EXIST", "Author doesn't exist.")

	r := New()
	r.AddError("BOOK_AUTHORS_CONTAIN_NULL", "Authors mustn't contain null value.")
	r.Merge(nested)
	r.Merge(nil)

	assert.Equal(t, []string{"BOOK_AUTHORS_CONTAIN_NULL", "AUTHOR_NOT_EXIST"}, r.Keys())
	assert.True(t, r.ContainsKey("NOT_EXIST"))
	assert.False(t, r.ContainsKey("NOT_MOVABLE"))
}

func TestResult_MarshalJSON(t *testing.T) {
	body, err := json.Marshal(Error("CATEGORY_NAME_EMPTY", "Name mustn't be empty string."))
	require.NoError(t, err)

	var decoded struct {
		Status string  `json:"status"`
		Events []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "ERROR", decoded.Status)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "CATEGORY_NAME_EMPTY", decoded.Events[0].Key)

	body, err = json.Marshal(&Result{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"OK","events":[]}`, string(body))
}
