package entitlement

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/license-manager/internal/models"
	"github.com/magabrotheeeer/license-manager/internal/services/license"
	"github.com/magabrotheeeer/license-manager/internal/storage"
)

// MockCatalog реализует интерфейс ProductCatalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) PublishedProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockValidator реализует интерфейс LicenseValidator
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(ctx context.Context, productID int64, email, licenseKey string, now time.Time) (license.Result, error) {
	args := m.Called(ctx, productID, email, licenseKey, now)
	return args.Get(0).(license.Result), args.Error(1)
}

// MockSigner реализует интерфейс SignedURLProvider
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) SignedURL(ctx context.Context, bucket, object string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, object, ttl)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testProduct() *models.Product {
	return &models.Product{
		ID:          42,
		Slug:        "my-plugin",
		Title:       "My Plugin",
		Description: "Does things",
		Author:      "ACME",
		Version:     "1.4.2",
		Tested:      "6.5",
		LastUpdated: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
		BannerLow:   "https://cdn.example.com/low.png",
		BannerHigh:  "https://cdn.example.com/high.png",
		Permalink:   "https://shop.example.com/products/my-plugin",
		FileBucket:  "releases",
		FileName:    "my-plugin-1.4.2.zip",
		Status:      models.ProductPublished,
	}
}

func validParams() map[string]string {
	return map[string]string{"p": "my-plugin", "e": "buyer@example.com", "l": "AB+CD/EF=="}
}

type fixture struct {
	catalog   *MockCatalog
	validator *MockValidator
	signer    *MockSigner
	d         *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		catalog:   new(MockCatalog),
		validator: new(MockValidator),
		signer:    new(MockSigner),
	}
	f.d = New(f.catalog, f.validator, f.signer, "https://shop.example.com/", time.Second).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) assertNoLookups(t *testing.T) {
	f.catalog.AssertNotCalled(t, "PublishedProductBySlug", mock.Anything, mock.Anything)
	f.validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.signer.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func errorOf(t *testing.T, resp Response) string {
	t.Helper()
	payload, ok := resp.Payload.(ErrorPayload)
	require.True(t, ok, "expected error payload, got %#v", resp.Payload)
	assert.False(t, resp.IsRedirect())
	return payload.Error
}

func TestDispatcher_UnknownAction(t *testing.T) {
	for _, action := range []string{"", "delete", "INFO", "Get", "info ", "list"} {
		t.Run(action, func(t *testing.T) {
			f := newFixture()

			resp := f.d.Handle(context.Background(), action, validParams())

			assert.Equal(t, MsgUnknownAction, errorOf(t, resp))
			assert.Equal(t, ActionUnknown, resp.Action)
			assert.ErrorIs(t, resp.Err, ErrUnknownAction)
			f.assertNoLookups(t)
		})
	}
}

func TestDispatcher_MissingParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{name: "нет p", params: map[string]string{"e": "buyer@example.com", "l": "KEY"}},
		{name: "нет e", params: map[string]string{"p": "my-plugin", "l": "KEY"}},
		{name: "нет l", params: map[string]string{"p": "my-plugin", "e": "buyer@example.com"}},
		{name: "пустой l", params: map[string]string{"p": "my-plugin", "e": "buyer@example.com", "l": ""}},
		{name: "нет ничего", params: map[string]string{}},
		{name: "nil", params: nil},
	}

	for _, action := range []string{"info", "get"} {
		for _, tt := range tests {
			t.Run(action+"/"+tt.name, func(t *testing.T) {
				f := newFixture()

				resp := f.d.Handle(context.Background(), action, tt.params)

				assert.Equal(t, MsgInvalidRequest, errorOf(t, resp))
				assert.ErrorIs(t, resp.Err, ErrMalformedRequest)
				f.assertNoLookups(t)
			})
		}
	}
}

func TestDispatcher_ProductNotFound(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(nil, storage.ErrProductNotFound)

	resp := f.d.Handle(context.Background(), "info", validParams())

	assert.Equal(t, MsgProductNotFound, errorOf(t, resp))
	f.validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.signer.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_InvalidLicense(t *testing.T) {
	for _, action := range []string{"info", "get"} {
		t.Run(action, func(t *testing.T) {
			f := newFixture()
			f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
			f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
				Return(license.Invalid, nil)

			resp := f.d.Handle(context.Background(), action, validParams())

			assert.Equal(t, MsgInvalidLicense, errorOf(t, resp))
			assert.ErrorIs(t, resp.Err, ErrUnauthorized)
			f.signer.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDispatcher_Info(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
	f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
		Return(license.Valid, nil)

	resp := f.d.Handle(context.Background(), "info", validParams())

	require.NoError(t, resp.Err)
	assert.False(t, resp.IsRedirect())
	payload, ok := resp.Payload.(InfoPayload)
	require.True(t, ok)

	assert.Equal(t, InfoPayload{
		Name:           "My Plugin",
		Description:    "Does things",
		Version:        "1.4.2",
		Tested:         "6.5",
		Author:         "ACME",
		LastUpdated:    "2025-02-01",
		BannerLow:      "https://cdn.example.com/low.png",
		BannerHigh:     "https://cdn.example.com/high.png",
		PackageURL:     "https://shop.example.com/api/license-manager/get?p=my-plugin&e=buyer%40example.com&l=AB%2BCD%2FEF%3D%3D",
		DescriptionURL: "https://shop.example.com/products/my-plugin#v=1.4.2",
	}, payload)

	u, err := url.Parse(payload.PackageURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/license-manager/get", u.Path)
	assert.Equal(t, "AB+CD/EF==", u.Query().Get("l"))
	assert.Equal(t, "my-plugin", u.Query().Get("p"))
	assert.Equal(t, "buyer@example.com", u.Query().Get("e"))

	f.signer.AssertNotCalled(t, "SignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_InfoPackageURLKeepsPlusInEmail(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
	f.validator.On("Validate", mock.Anything, int64(42), "buyer+shop@example.com", "AB+CD/EF==", fixedNow).
		Return(license.Valid, nil)

	params := validParams()
	params["e"] = "buyer+shop@example.com"
	resp := f.d.Handle(context.Background(), "info", params)

	require.NoError(t, resp.Err)
	payload, ok := resp.Payload.(InfoPayload)
	require.True(t, ok)

	u, err := url.Parse(payload.PackageURL)
	require.NoError(t, err)
	assert.Equal(t, "buyer+shop@example.com", u.Query().Get("e"))
	assert.Equal(t, "AB+CD/EF==", u.Query().Get("l"))
}

func TestDispatcher_InfoIsIdempotent(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
	f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
		Return(license.Valid, nil)

	first := f.d.Handle(context.Background(), "info", validParams())
	second := f.d.Handle(context.Background(), "info", validParams())

	assert.Equal(t, first.Payload, second.Payload)
	f.catalog.AssertNumberOfCalls(t, "PublishedProductBySlug", 2)
}

func TestDispatcher_Get(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
	f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
		Return(license.Valid, nil)
	f.signer.On("SignedURL", mock.Anything, "releases", "my-plugin-1.4.2.zip", 10*time.Minute).
		Return("https://releases.s3.amazonaws.com/my-plugin-1.4.2.zip?X-Amz-Expires=600", nil)

	resp := f.d.Handle(context.Background(), "get", validParams())

	require.NoError(t, resp.Err)
	assert.True(t, resp.IsRedirect())
	assert.Nil(t, resp.Payload)
	assert.Equal(t, ActionGet, resp.Action)
	assert.Equal(t, "https://releases.s3.amazonaws.com/my-plugin-1.4.2.zip?X-Amz-Expires=600", resp.Location)
	assert.Equal(t, fixedNow.Add(DownloadURLTTL), resp.ExpiresAt)
	f.signer.AssertNumberOfCalls(t, "SignedURL", 1)
}

func TestDispatcher_InfrastructureFailures(t *testing.T) {
	tests := []struct {
		name   string
		action string
		setup  func(f *fixture)
	}{
		{
			name:   "каталог недоступен",
			action: "info",
			setup: func(f *fixture) {
				f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").
					Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
			},
		},
		{
			name:   "хранилище лицензий недоступно",
			action: "info",
			setup: func(f *fixture) {
				f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
				f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
					Return(license.Invalid, errors.New("license.Validate: i/o timeout"))
			},
		},
		{
			name:   "ключи хранилища не настроены",
			action: "get",
			setup: func(f *fixture) {
				f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
				f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
					Return(license.Valid, nil)
				f.signer.On("SignedURL", mock.Anything, "releases", "my-plugin-1.4.2.zip", DownloadURLTTL).
					Return("", errors.New("object storage credentials are not configured"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			resp := f.d.Handle(context.Background(), tt.action, validParams())

			assert.Equal(t, MsgActionFailed, errorOf(t, resp))
			assert.ErrorIs(t, resp.Err, ErrInternal)
		})
	}
}

func TestDispatcher_EmptySignedURL(t *testing.T) {
	f := newFixture()
	f.catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
	f.validator.On("Validate", mock.Anything, int64(42), "buyer@example.com", "AB+CD/EF==", fixedNow).
		Return(license.Valid, nil)
	f.signer.On("SignedURL", mock.Anything, "releases", "my-plugin-1.4.2.zip", DownloadURLTTL).Return("", nil)

	resp := f.d.Handle(context.Background(), "get", validParams())

	assert.Equal(t, MsgActionFailed, errorOf(t, resp))
	assert.ErrorIs(t, resp.Err, ErrActionFailed)
}

// slowCatalog блокируется до отмены контекста вызова.
type slowCatalog struct{}

func (slowCatalog) PublishedProductBySlug(ctx context.Context, _ string) (*models.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDispatcher_CallTimeout(t *testing.T) {
	validatorMock := new(MockValidator)
	d := New(slowCatalog{}, validatorMock, new(MockSigner), "https://shop.example.com", 20*time.Millisecond)

	start := time.Now()
	resp := d.Handle(context.Background(), "info", validParams())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, MsgActionFailed, errorOf(t, resp))
	assert.ErrorIs(t, resp.Err, context.DeadlineExceeded)
	validatorMock.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// licenseStore хранилище лицензий в памяти для проверки вместе с настоящим валидатором.
type licenseStore map[string]*models.License

func (s licenseStore) FindLicense(_ context.Context, productID int64, email, key string) (*models.License, error) {
	lic, ok := s[email+"|"+key]
	if !ok || lic.ProductID != productID {
		return nil, storage.ErrLicenseNotFound
	}
	return lic, nil
}

func TestDispatcher_WithValidator(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	now := fixedNow

	store := licenseStore{
		"expired@example.com|K":   {ProductID: 42, ValidUntil: &past},
		"boundary@example.com|K":  {ProductID: 42, ValidUntil: &now},
		"active@example.com|K":    {ProductID: 42, ValidUntil: &future},
		"perpetual@example.com|K": {ProductID: 42},
		"other@example.com|K":     {ProductID: 7},
	}

	tests := []struct {
		email   string
		wantErr string
	}{
		{email: "expired@example.com", wantErr: MsgInvalidLicense},
		{email: "boundary@example.com", wantErr: MsgInvalidLicense},
		{email: "other@example.com", wantErr: MsgInvalidLicense},
		{email: "missing@example.com", wantErr: MsgInvalidLicense},
		{email: "active@example.com"},
		{email: "perpetual@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			catalog := new(MockCatalog)
			catalog.On("PublishedProductBySlug", mock.Anything, "my-plugin").Return(testProduct(), nil)
			d := New(catalog, license.NewValidator(store), new(MockSigner), "https://shop.example.com", time.Second).
				WithClock(func() time.Time { return fixedNow })

			resp := d.Handle(context.Background(), "info", map[string]string{"p": "my-plugin", "e": tt.email, "l": "K"})

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorOf(t, resp))
				return
			}
			require.NoError(t, resp.Err)
			assert.IsType(t, InfoPayload{}, resp.Payload)
		})
	}
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionInfo, ParseAction("info"))
	assert.Equal(t, ActionGet, ParseAction("get"))
	assert.Equal(t, ActionUnknown, ParseAction("upload"))
	assert.Equal(t, "info", ActionInfo.String())
	assert.Equal(t, "get", ActionGet.String())
	assert.Equal(t, "unknown", ActionUnknown.String())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, MsgActionFailed, Message(errors.New("boom")))
	assert.Equal(t, MsgInvalidLicense, Message(ErrUnauthorized))
	assert.Equal(t, MsgProductNotFound, Message(ErrProductNotFound))
}
