package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	"gitlab.com/smartcabinet/cab.device_config/src/production/CAB.ConfigService/health"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
	implementation "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Implementation"
)

const testToken = "registry-s3cret"

func cloudConfig(t *testing.T) *config.Config {
	t.Helper()
	s := config.Defaults()
	s.Network.SSID = "warehouse"
	s.Network.Password = "wifi-secret"
	s.Broker.Preset = "cloud"
	s.Broker.Cloud.Host = "fleet.example.com"
	s.Broker.Cloud.Username = "cab"
	s.Broker.Cloud.Password = "mqtt-secret"
	s.Cabinet.ID = "CAB017"
	s.Server.RegistryToken = testToken
	cfg, err := config.Build(s)
	require.NoError(t, err)
	return cfg
}

func setupRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	log := logger.Nop()
	NewHealthController(health.NewHealthChecker(cfg, nil), log).RegisterRoutes(router)
	NewConfigController(cfg, log).RegisterRoutes(router)

	registry := NewRegistryController(implementation.NewMemoryCabinetRepository(), cfg, log)
	registry.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	registry.RegisterRoutes(router)
	return router
}

func perform(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestGetConfigRedactsSecrets(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	raw := w.Body.String()
	assert.NotContains(t, raw, "wifi-secret")
	assert.NotContains(t, raw, "mqtt-secret")
	assert.NotContains(t, raw, testToken)
	assert.Contains(t, raw, "********")
}

func TestGetBrokerShowsOnlyActivePreset(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/config/broker", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "cloud", body["preset"])
	assert.Equal(t, "fleet.example.com", body["host"])
	assert.EqualValues(t, 8883, body["port"])
	assert.Equal(t, true, body["tls"])
	assert.NotContains(t, w.Body.String(), config.DefaultLocalHost)
}

func TestGetNetworkAndIdentity(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/config/network", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warehouse", decode(t, w)["ssid"])

	w = perform(router, http.MethodGet, "/config/identity", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "CAB017", body["cabinet_id"])
	assert.Equal(t, "cabinet/CAB017/status", body["topics"].(map[string]interface{})["status"])
}

func TestGetTopics(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/config/topics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	topics := body["topics"].(map[string]interface{})
	assert.Equal(t, "cabinet/CAB017/verify/result", topics["verify_result"])
	assert.Equal(t, "cabinet/+/heartbeat", body["wildcards"].(map[string]interface{})["heartbeat"])
}

func TestPinsEndpoints(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodGet, "/config/pins", "")
	require.Equal(t, http.StatusOK, w.Code)
	pins := decode(t, w)["pins"].([]interface{})
	assert.Len(t, pins, 16)

	w = perform(router, http.MethodGet, "/config/pins/XCLK", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 0, body["gpio"])
	assert.Equal(t, true, body["wired"])

	w = perform(router, http.MethodGet, "/config/pins/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, -1, body["gpio"])
	assert.Equal(t, false, body["wired"])

	w = perform(router, http.MethodGet, "/config/pins/FLASH", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryFlow(t *testing.T) {
	router := setupRouter(t, cloudConfig(t))

	w := perform(router, http.MethodPost, "/registry/self", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodPost, "/registry/self", testToken)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "CAB017", body["cabinet_id"])
	assert.Equal(t, "cloud", body["preset"])
	assert.Equal(t, "fleet.example.com", body["broker_host"])

	w = perform(router, http.MethodPost, "/registry/self", testToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(router, http.MethodGet, "/registry", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = perform(router, http.MethodGet, "/registry/CAB017", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/registry/CAB999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodGet, "/registry/cab-17", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodDelete, "/registry/cab-17", testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodDelete, "/registry/CAB017", testToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(router, http.MethodDelete, "/registry/CAB017", testToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryWritesRefusedWithoutToken(t *testing.T) {
	s := config.Defaults()
	s.Network.SSID = "lab"
	s.Network.Password = "wpa"
	cfg, err := config.Build(s)
	require.NoError(t, err)

	router := setupRouter(t, cfg)
	w := perform(router, http.MethodPost, "/registry/self", "anything")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "not configured"))
}
