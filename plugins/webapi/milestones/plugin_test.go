package milestones

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/jsonmodels"
	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestGetMilestone(t *testing.T) {
	tf := testframework.New(t)
	tf.IssueTransaction("Milestone7", testframework.GenesisAlias, testframework.GenesisAlias)
	require.NoError(t, tf.Storage.StoreMilestone(&tangle.Milestone{Index: 7, Hash: tf.Hash("Milestone7")}))

	deps.Storage = tf.Storage
	server := echo.New()

	for name, test := range map[string]struct {
		handler  echo.HandlerFunc
		index    string
		code     int
		expected jsonmodels.MilestoneResponse
	}{
		"existing":  {getMilestone, "7", http.StatusOK, jsonmodels.MilestoneResponse{Index: 7, Hash: tf.Hash("Milestone7").String()}},
		"latest":    {getLatestMilestone, "", http.StatusOK, jsonmodels.MilestoneResponse{Index: 7, Hash: tf.Hash("Milestone7").String()}},
		"missing":   {getMilestone, "8", http.StatusNotFound, jsonmodels.MilestoneResponse{}},
		"malformed": {getMilestone, "seven", http.StatusBadRequest, jsonmodels.MilestoneResponse{}},
	} {
		test := test
		t.Run(name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c := server.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recorder)
			if test.index != "" {
				c.SetParamNames("index")
				c.SetParamValues(test.index)
			}

			require.NoError(t, test.handler(c))
			assert.Equal(t, test.code, recorder.Code)

			var response jsonmodels.MilestoneResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			if test.code == http.StatusOK {
				assert.Equal(t, test.expected, response)
			} else {
				assert.NotEmpty(t, response.Error)
			}
		})
	}
}
