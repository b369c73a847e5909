package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-rest-service/internal/adapter/gin/middleware"
	domain "user-rest-service/internal/domain/user"
	usecase "user-rest-service/internal/usecase/user"
	apperrors "user-rest-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserUsecase) Create(ctx context.Context, in usecase.UserDTO) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) Update(ctx context.Context, in usecase.UserDTO) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	logger := zaptest.NewLogger(t)
	h := NewUserHandler(mockUsecase, logger)

	r := gin.New()
	r.Use(middleware.ErrorHandler(logger))
	r.GET("/user", h.FindAll)
	r.POST("/user", h.Create)
	r.GET("/user/:id", h.FindByID)
	r.PUT("/user/:id", h.Update)
	r.DELETE("/user/:id", h.Delete)
	return r, mockUsecase
}

func perform(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.StandardError {
	var body middleware.StandardError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestFindByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("FindByID", mock.Anything, int64(1)).
			Return(&domain.User{ID: 1, Name: "Adison", Email: "adison@test.com", Password: "123"}, nil)

		w := perform(r, http.MethodGet, "/user/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"Adison","email":"adison@test.com"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("FindByID", mock.Anything, int64(999)).
			Return(nil, apperrors.NewNotFoundError("user", apperrors.MsgObjectNotFound))

		w := perform(r, http.MethodGet, "/user/999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, 404, body.Status)
		assert.Equal(t, "Objeto não encontrado!", body.Error)
		assert.Equal(t, "/user/999", body.Path)
		assert.False(t, body.Timestamp.IsZero())
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		for _, target := range []string{"/user/abc", "/user/0", "/user/-4"} {
			w := perform(r, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
			assert.Equal(t, apperrors.MsgInvalidID, decodeError(t, w).Error)
		}
		mockUsecase.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestFindAll(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("FindAll", mock.Anything).Return([]domain.User{
			{ID: 1, Name: "Adison", Email: "adison@test.com", Password: "123"},
			{ID: 2, Name: "Lorival", Email: "lorival@test.com", Password: "123"},
		}, nil)

		w := perform(r, http.MethodGet, "/user", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[
			{"id":1,"name":"Adison","email":"adison@test.com"},
			{"id":2,"name":"Lorival","email":"lorival@test.com"}
		]`, w.Body.String())
	})

	t.Run("Empty", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("FindAll", mock.Anything).Return([]domain.User{}, nil)

		w := perform(r, http.MethodGet, "/user", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Usecase Error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))

		w := perform(r, http.MethodGet, "/user", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, apperrors.MsgInternalError, body.Error)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		reqBody := usecase.UserDTO{ID: 55, Name: "Adison", Email: "adison@test.com", Password: "123"}

		mockUsecase.On("Create", mock.Anything, reqBody).
			Return(&domain.User{ID: 3, Name: "Adison", Email: "adison@test.com", Password: "123"}, nil)

		w := perform(r, http.MethodPost, "/user", reqBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/user/3", w.Header().Get("Location"))
		assert.Empty(t, w.Body.String())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDataIntegrityError("email", apperrors.MsgEmailRegistered))

		w := perform(r, http.MethodPost, "/user", usecase.UserDTO{Name: "A", Email: "a@test.com", Password: "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, 400, body.Status)
		assert.Equal(t, "E-mail já cadastrado!", body.Error)
		assert.Equal(t, "/user", body.Path)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := perform(r, http.MethodPost, "/user", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.MsgInvalidBody, decodeError(t, w).Error)
		mockUsecase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("name", apperrors.MsgRequiredField))

		w := perform(r, http.MethodPost, "/user", usecase.UserDTO{Email: "a@test.com", Password: "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Campo obrigatório! name", decodeError(t, w).Error)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Path ID Overrides Body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		mockUsecase.On("Update", mock.Anything, usecase.UserDTO{ID: 1, Name: "Adison", Email: "adison@test.com", Password: "123"}).
			Return(&domain.User{ID: 1, Name: "Adison", Email: "adison@test.com", Password: "123"}, nil)

		w := perform(r, http.MethodPut, "/user/1", usecase.UserDTO{ID: 77, Name: "Adison", Email: "adison@test.com", Password: "123"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"Adison","email":"adison@test.com"}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Email Of Another User", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Update", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDataIntegrityError("email", apperrors.MsgEmailRegistered))

		w := perform(r, http.MethodPut, "/user/1", usecase.UserDTO{Name: "A", Email: "b@test.com", Password: "1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, 400, body.Status)
		assert.Equal(t, "E-mail já cadastrado!", body.Error)
		assert.Equal(t, "/user/1", body.Path)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := perform(r, http.MethodPut, "/user/x", usecase.UserDTO{Name: "A"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Delete", mock.Anything, int64(1)).Return(nil)

		w := perform(r, http.MethodDelete, "/user/1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Delete", mock.Anything, int64(999)).
			Return(apperrors.NewNotFoundError("user", apperrors.MsgObjectNotFound))

		w := perform(r, http.MethodDelete, "/user/999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Objeto não encontrado!", decodeError(t, w).Error)
	})
}
