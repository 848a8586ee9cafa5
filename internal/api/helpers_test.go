package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	images *mocks.MockImageService
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)

	authSvc := service.NewAuthService("test-secret")
	images := new(mocks.MockImageService)
	images.On("SaveDataURI", mock.Anything, service.RecipeImages, mock.AnythingOfType("string")).
		Return("http://media.test/recipes/images/pic.png", nil).Maybe()
	images.On("SaveDataURI", mock.Anything, service.Avatars, mock.AnythingOfType("string")).
		Return("http://media.test/users/avatars/me.png", nil).Maybe()
	images.On("Remove", mock.Anything, mock.AnythingOfType("string")).Maybe()

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	api.RegisterRoutes(router, api.NewServices(db, authSvc, images, nil))

	return &testEnv{t: t, db: db, router: router, auth: authSvc, images: images}
}

// user creates a user and returns it with a bearer token
func (e *testEnv) user(username string) (*models.User, string) {
	e.t.Helper()
	user := testhelpers.CreateTestUser(e.t, e.db, username)
	token, err := e.auth.GenerateToken(user)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

type errorEnvelope struct {
	Error struct {
		Kind    string              `json:"kind"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields"`
	} `json:"error"`
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	decode(t, w, &env)
	return env.Error.Kind
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

