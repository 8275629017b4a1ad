package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/service/authservice"
	"github.com/GlebRadaev/bankapi/pkg/auth"
	"github.com/GlebRadaev/bankapi/pkg/utils"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

const signupBody = `{
	"fullname":"Jane Doe","email":"Jane@Example.com","phone":"+15550199","dob":"1990-04-01",
	"gender":"Female","occupation":"Engineer","country":"UK","city":"London","zipcode":"SW1A1AA",
	"address":"10 Downing St",
	"nextOfKin":{"name":"John Doe","email":"john@example.com","phone":"+15550100","relationship":"brother","address":"12 Main St"},
	"password":"password123","passwordConfirm":"password123","pin":"1234"
}`

func session(user *domain.User) *authservice.Session {
	return &authservice.Session{
		Token:     "some-jwt-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      user,
		Wallet:    &domain.Wallet{ID: uuid.New(), Currency: "USD"},
	}
}

func TestSignupHandler(t *testing.T) {
	handler, service := NewMock(t)
	user := &domain.User{ID: uuid.New(), Fullname: "Jane Doe", Email: "jane@example.com", Role: domain.RoleUser, Status: domain.UserStatusPending}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedKind  string
		expectedError string
	}{
		{
			name: "Successful signup",
			body: signupBody,
			prepareMock: func() {
				service.EXPECT().Signup(gomock.Any(), gomock.Any(), "password123", "1234").DoAndReturn(
					func(_ context.Context, u *domain.User, _, _ string) (*authservice.Session, error) {
						assert.Equal(t, "Jane Doe", u.Fullname)
						assert.Equal(t, domain.GenderFemale, u.Gender)
						assert.Equal(t, "brother", u.NextOfKin.Relationship)
						assert.Equal(t, 1990, u.DOB.Year())
						return session(user), nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "User already exists",
			body: signupBody,
			prepareMock: func() {
				service.EXPECT().Signup(gomock.Any(), gomock.Any(), "password123", "1234").
					Return(nil, fmt.Errorf("%w: email already in use", domain.ErrConflict))
			},
			expectedCode:  http.StatusConflict,
			expectedKind:  "Conflict",
			expectedError: "email already in use",
		},
		{
			name:          "Passwords differ",
			body:          `{"fullname":"Jane Doe","email":"jane@example.com","password":"password123","passwordConfirm":"password124","pin":"12"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedKind:  "InvalidArgument",
			expectedError: "invalid data supplied",
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodPost, "/api/users/signup", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Signup(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			var resp utils.Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedKind, resp.Kind)
				assert.Equal(t, tt.expectedError, resp.Message)
				return
			}
			assert.Equal(t, utils.StatusSuccess, resp.Status)
			assert.Equal(t, "Bearer some-jwt-token", rr.Header().Get("Authorization"))
			cookies := rr.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, auth.CookieName, cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)
	user := &domain.User{ID: uuid.New(), Email: "jane@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful login",
			body: `{"email":"jane@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "jane@example.com", "password123").Return(session(user), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Invalid credentials",
			body: `{"email":"jane@example.com","password":"wrong"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "jane@example.com", "wrong").
					Return(nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized))
			},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "incorrect email or password",
		},
		{
			name: "Denied account",
			body: `{"email":"jane@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "jane@example.com", "password123").
					Return(nil, fmt.Errorf("%w: your account has been denied", domain.ErrForbidden))
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "your account has been denied",
		},
		{
			name: "Internal error is not echoed",
			body: `{"email":"jane@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "jane@example.com", "password123").Return(nil, errors.New("connection refused"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Something went very wrong!",
		},
		{
			name:          "Missing email",
			body:          `{"password":"password123"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid data supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	handler, _ := NewMock(t)
	rr := httptest.NewRecorder()

	handler.Logout(rr, httptest.NewRequest(http.MethodGet, "/api/users/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, loggedOut, cookies[0].Value)
}

func TestMeHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()
	principal := domain.Principal{ID: userID, Role: domain.RoleUser}

	service.EXPECT().Me(gomock.Any(), userID).Return(&domain.User{ID: userID, Fullname: "Jane Doe"}, &domain.Wallet{SavingAccountNumber: "2377225624"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rr := httptest.NewRecorder()
	handler.Me(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"savingAccountNumber":"2377225624"`)

	service.EXPECT().Me(gomock.Any(), userID).Return(nil, nil, fmt.Errorf("%w: no user found with that ID", domain.ErrNotFound))
	rr = httptest.NewRecorder()
	handler.Me(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePasswordHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()
	user := &domain.User{ID: userID}

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Password changed",
			body: `{"passwordCurrent":"password123","password":"newpassword1","passwordConfirm":"newpassword1"}`,
			prepareMock: func() {
				service.EXPECT().UpdatePassword(gomock.Any(), userID, "password123", "newpassword1").Return(session(user), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Wrong current password",
			body: `{"passwordCurrent":"nope","password":"newpassword1","passwordConfirm":"newpassword1"}`,
			prepareMock: func() {
				service.EXPECT().UpdatePassword(gomock.Any(), userID, "nope", "newpassword1").
					Return(nil, fmt.Errorf("%w: your current password is wrong", domain.ErrUnauthorized))
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Confirmation mismatch",
			body:         `{"passwordCurrent":"password123","password":"newpassword1","passwordConfirm":"newpassword2"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodPatch, "/api/users/updateMyPassword", bytes.NewReader([]byte(tt.body)))
			req = req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{ID: userID, Role: domain.RoleUser}))
			rr := httptest.NewRecorder()

			handler.UpdatePassword(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUpdateMeHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedField string
	}{
		{
			name: "Profile updated",
			body: `{"fullname":"Jane Roe","gender":"Female"}`,
			prepareMock: func() {
				service.EXPECT().UpdateMe(gomock.Any(), userID, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
						require.NotNil(t, upd.Fullname)
						assert.Equal(t, "Jane Roe", *upd.Fullname)
						assert.Nil(t, upd.Email)
						return &domain.User{ID: userID, Fullname: *upd.Fullname, Gender: domain.GenderFemale}, nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Password fields refused",
			body:          `{"fullname":"Jane Roe","password":"newpassword1","passwordConfirm":"newpassword1"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedField: "password",
		},
		{
			name:          "Invalid email",
			body:          `{"email":"not-an-email"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedField: "email",
		},
		{
			name:          "Blank fullname",
			body:          `{"fullname":""}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedField: "fullname",
		},
		{
			name: "Email already in use",
			body: `{"email":"bob@example.com"}`,
			prepareMock: func() {
				service.EXPECT().UpdateMe(gomock.Any(), userID, gomock.Any()).
					Return(nil, fmt.Errorf("%w: email already in use", domain.ErrConflict))
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Invalid request body",
			body:         `{"fullname":`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodPatch, "/api/users/updateMe", bytes.NewReader([]byte(tt.body)))
			req = req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{ID: userID, Role: domain.RoleUser}))
			rr := httptest.NewRecorder()

			handler.UpdateMe(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedField != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Contains(t, resp.Errors, tt.expectedField)
			}
		})
	}
}

func TestDeleteMeHandler(t *testing.T) {
	handler, service := NewMock(t)
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/users/deleteMe", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{ID: userID, Role: domain.RoleUser}))

	service.EXPECT().DeactivateMe(gomock.Any(), userID).Return(nil)
	rr := httptest.NewRecorder()
	handler.DeleteMe(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, loggedOut, cookies[0].Value)

	service.EXPECT().DeactivateMe(gomock.Any(), userID).Return(errors.New("database error"))
	rr = httptest.NewRecorder()
	handler.DeleteMe(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
