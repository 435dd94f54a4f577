package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradie-match-server/apperror"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
	"tradie-match-server/utils"
)

type stubGeocoder struct {
	result *utils.GeocodingResult
	err    error
	labels []string
}

func (g *stubGeocoder) Geocode(_ context.Context, label string) (*utils.GeocodingResult, error) {
	g.labels = append(g.labels, label)
	return g.result, g.err
}

type profileFixture struct {
	svc      *ProfileService
	profiles *fakeProfiles
	blocks   *fakeBlocks
	uploader *fakeUploader
	geocoder *stubGeocoder
	feed     *fakeFeed
	broker   *recordingBroker
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := &profileFixture{
		profiles: newFakeProfiles(
			models.Profile{ID: "sam", Name: "Sam", Role: models.RoleTradie, Trade: "Plumber", Location: "Leeds"},
			models.Profile{ID: "alex", Name: "Alex", Role: models.RoleAdmirer},
		),
		blocks:   &fakeBlocks{},
		uploader: &fakeUploader{},
		geocoder: &stubGeocoder{result: &utils.GeocodingResult{Latitude: 53.48, Longitude: -2.24, Place: "Manchester"}},
		feed:     newFakeFeed(),
		broker:   newRecordingBroker(),
	}
	f.svc = NewProfileService(f.profiles, f.blocks, f.uploader, f.geocoder, f.feed, f.broker, nopLog)
	f.svc.now = fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return f
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	p, err := f.svc.Update(ctx, "sam", UpdateProfileRequest{
		Bio:        ptr("  Twenty years on the tools  "),
		HourlyRate: ptr(45.0),
		Trade:      ptr("Electrician"),
		Incognito:  ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Twenty years on the tools", p.Bio)
	assert.Equal(t, 45.0, p.HourlyRate)
	assert.Equal(t, "Electrician", p.Trade)
	assert.True(t, p.Incognito)
	assert.Equal(t, 1, f.feed.deletes)

	snap, ok := f.broker.latest(realtime.ProfileTopic("sam"))
	require.True(t, ok)
	assert.Equal(t, realtime.KindProfile, snap.Kind)
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		id  string
		req UpdateProfileRequest
	}{
		"blank name":    {"sam", UpdateProfileRequest{Name: ptr("  ")}},
		"under 18":      {"sam", UpdateProfileRequest{Age: ptr(17)}},
		"unknown trade": {"sam", UpdateProfileRequest{Trade: ptr("Wizard")}},
		"admirer trade": {"alex", UpdateProfileRequest{Trade: ptr("Plumber")}},
		"negative rate": {"sam", UpdateProfileRequest{HourlyRate: ptr(-1.0)}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, tc.id, tc.req)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
	assert.Zero(t, f.feed.deletes)
}

func TestUpdateProfileGeocodesNewLocation(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	p, err := f.svc.Update(ctx, "sam", UpdateProfileRequest{Location: ptr("Leeds")})
	require.NoError(t, err)
	assert.Empty(t, f.geocoder.labels, "unchanged label is not looked up")
	assert.Nil(t, p.Latitude)

	p, err = f.svc.Update(ctx, "sam", UpdateProfileRequest{Location: ptr("Manchester")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Manchester"}, f.geocoder.labels)
	require.NotNil(t, p.Latitude)
	assert.InDelta(t, 53.48, *p.Latitude, 1e-9)

	f.geocoder.err = errors.New("nominatim down")
	p, err = f.svc.Update(ctx, "sam", UpdateProfileRequest{Location: ptr("York")})
	require.NoError(t, err)
	assert.Equal(t, "York", p.Location)
	assert.InDelta(t, 53.48, *p.Latitude, 1e-9, "previous coordinates are kept")
}

func TestUpdateLocation(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateLocation(ctx, "alex", LocationUpdate{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	p, err := f.svc.UpdateLocation(ctx, "alex", LocationUpdate{Latitude: 51.5, Longitude: -0.12, Accuracy: ptr(25.0)})
	require.NoError(t, err)
	assert.InDelta(t, 51.5, *p.Latitude, 1e-9)
	require.NotNil(t, p.LocationAccuracy)
	assert.Equal(t, 25.0, *p.LocationAccuracy)
	require.NotNil(t, p.LocationUpdatedAt)
}

func TestAddPhoto(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPhoto(ctx, "alex", Upload{Filename: "one.jpg", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/profiles/alex/one.jpg", p.PhotoURL)

	p, err = f.svc.AddPhoto(ctx, "alex", Upload{Filename: "two.jpg", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/profiles/alex/one.jpg", p.PhotoURL, "the first photo stays the main one")
	assert.Len(t, p.Photos, 2)

	for i := 0; i < maxProfilePhotos-2; i++ {
		_, err = f.svc.AddPhoto(ctx, "alex", Upload{Filename: "more.jpg", Data: []byte("x")})
		require.NoError(t, err)
	}
	calls := f.uploader.calls
	_, err = f.svc.AddPhoto(ctx, "alex", Upload{Filename: "seventh.jpg", Data: []byte("x")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, calls, f.uploader.calls)
}

func TestSubmitVerification(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	p, err := f.svc.SubmitVerification(ctx, "sam", Upload{Filename: "licence.png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPendingReview, p.VerificationStatus)
	assert.Equal(t, "https://img.test/id/sam/licence.png", p.IDPhotoURL)

	require.NoError(t, f.profiles.Save(ctx, &models.Profile{ID: "alex", Name: "Alex", Verified: true}))
	_, err = f.svc.SubmitVerification(ctx, "alex", Upload{Filename: "licence.png", Data: []byte("x")})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestBlockUser(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Block(ctx, "alex", "alex", ""), apperror.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Block(ctx, "alex", "sam", "email"), apperror.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.Block(ctx, "alex", "nobody", ""), apperror.ErrNotFound)

	require.NoError(t, f.svc.Block(ctx, "alex", "sam", ""))
	blocked, err := f.svc.ListBlocked(ctx, "alex")
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "profile", blocked[0].Source)

	require.NoError(t, f.svc.Unblock(ctx, "alex", "sam"))
	blocked, err = f.svc.ListBlocked(ctx, "alex")
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestGeolocationFailedMessage(t *testing.T) {
	f := newProfileFixture(t)
	assert.Equal(t, apperror.GeolocationMessage(apperror.GeoPermissionDenied), f.svc.GeolocationFailed("alex", apperror.GeoPermissionDenied))
}
