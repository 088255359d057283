package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func deleteJSON(t *testing.T, router http.Handler, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodDelete, path, bytes.NewReader(payload))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func Test_deleteStrategy(t *testing.T) {
	createAndGetID := func(t *testing.T, router http.Handler) string {
		t.Helper()
		w := postJSON(t, router, "/strategies", validCreateBody())
		require.Equal(t, 201, w.Code)
		var response struct {
			Data strategyResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response.Data.ID
	}

	t.Run("owner can delete", func(t *testing.T) {
		repo := &fakeStrategyRepository{}
		router := newTestRouter(ApiHandler{StrategyRepository: repo})
		id := createAndGetID(t, router)

		w := deleteJSON(t, router, "/strategies/"+id, map[string]interface{}{
			"walletAddress": testWallet,
		})
		require.Equal(t, 200, w.Code)
		require.Contains(t, w.Body.String(), `"success":true`)
		require.Contains(t, w.Body.String(), id)
		require.Len(t, repo.strategies, 0)

		// deleted strategies no longer show up in listings
		list := getPath(t, router, "/strategies?walletAddress="+testWallet)
		var response listStrategiesResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &response))
		require.Equal(t, 0, response.Count)
	})

	t.Run("another wallet cannot delete", func(t *testing.T) {
		repo := &fakeStrategyRepository{}
		router := newTestRouter(ApiHandler{StrategyRepository: repo})
		id := createAndGetID(t, router)

		w := deleteJSON(t, router, "/strategies/"+id, map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
		})
		require.Equal(t, 404, w.Code)
		require.Len(t, repo.strategies, 1)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		router := newTestRouter(ApiHandler{StrategyRepository: &fakeStrategyRepository{}})
		w := deleteJSON(t, router, "/strategies/strat_1_missing", map[string]interface{}{
			"walletAddress": testWallet,
		})
		require.Equal(t, 404, w.Code)
	})

	t.Run("missing wallet address rejected", func(t *testing.T) {
		repo := &fakeStrategyRepository{}
		router := newTestRouter(ApiHandler{StrategyRepository: repo})
		id := createAndGetID(t, router)

		w := deleteJSON(t, router, "/strategies/"+id, map[string]interface{}{})
		require.Equal(t, 400, w.Code)
		require.Len(t, repo.strategies, 1)
	})
}
