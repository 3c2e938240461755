package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ams-backend/internal/channel"
	"ams-backend/internal/config"
	"ams-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("AMS_STORE_DRIVER", config.StoreMemory)
	t.Setenv("AMS_CHANNEL_DRIVER", config.ChannelKafka)
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func Test_BuildMemory(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.IsType(t, &store.Memory{}, a.Store)
	assert.IsType(t, &channel.KafkaPublisher{}, a.Publisher)
	assert.Nil(t, a.MQTT)

	router := a.API.Router()
	body := `{"deviceId":"d1","timestamp":1740830400000,"screenBrightness":70}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/d1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"brightness":70`)
}

func Test_BuildUnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Store.Driver = "cassandra"
	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrStoreInit)
}
