package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"

	"github.com/radif/imageproc/internal/identifier"
	"github.com/radif/imageproc/internal/transform"
)

type storedObject struct {
	contentType  string
	cacheControl string
	data         []byte
}

// fakeStore records puts and can fail on the n-th call (1-based).
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	order   []string
	calls   int
	failOn  int
	block   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storedObject)}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType, cacheControl string, data []byte) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failOn == call {
		return errors.New("bucket unavailable")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = storedObject{contentType: contentType, cacheControl: cacheControl, data: data}
	f.order = append(f.order, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(store *fakeStore) (*Service, *int) {
	svc := NewService(store, transform.NewEncoder(85, 4), DefaultProfiles(), time.Second)
	generated := 0
	svc.newID = func() string {
		generated++
		return fmt.Sprintf("%024x", generated)
	}
	return svc, &generated
}

func webpSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcessResized_StoresEveryVariant(t *testing.T) {
	store := newFakeStore()
	svc, generated := newTestService(store)

	res, err := svc.ProcessResized(context.Background(), "64", Input{Filename: "a.png", Data: testPNG(t, 300, 150)})
	require.NoError(t, err)

	assert.Equal(t, 1, *generated)
	assert.Equal(t, "64", res.Endpoint)
	assert.Equal(t, "webp", res.Format)
	assert.Equal(t, []string{"", "@2x", "@3x", "@4x"}, res.Sizes)

	id := res.Hash
	wantKeys := []string{
		"images/" + id + ".webp",
		"images/" + id + "@2x.webp",
		"images/" + id + "@3x.webp",
		"images/" + id + "@4x.webp",
	}
	assert.Equal(t, wantKeys, store.order)
	assert.Equal(t, "https://cdn.test/images/"+id+"@2x.webp", res.URLs["@2x"])

	wantSides := []int{64, 128, 185, 256}
	for i, key := range wantKeys {
		obj := store.objects[key]
		assert.Equal(t, "image/webp", obj.contentType)
		assert.Equal(t, "public, max-age=31536000", obj.cacheControl)
		w, h := webpSize(t, obj.data)
		assert.Equal(t, wantSides[i], w, key)
		assert.Equal(t, wantSides[i], h, key)
	}
}

func TestProcessResized_ProportionalWidth(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	res, err := svc.ProcessResized(context.Background(), "100", Input{Filename: "b.png", Data: testPNG(t, 50, 30)})
	require.NoError(t, err)
	require.Len(t, store.order, 3)

	want := map[string][2]int{"": {100, 60}, "@2x": {200, 120}, "@3x": {600, 360}}
	for suffix, dims := range want {
		w, h := webpSize(t, store.objects[Key(res.Hash, suffix)].data)
		assert.Equal(t, dims[0], w, suffix)
		assert.Equal(t, dims[1], h, suffix)
	}
}

func TestProcessResized_StopsAtFirstStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failOn = 3
	svc, _ := newTestService(store)

	res, err := svc.ProcessResized(context.Background(), "64", Input{Filename: "a.png", Data: testPNG(t, 40, 40)})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStore)

	// k=3 of 4: two objects persist, the fourth is never attempted.
	assert.Len(t, store.objects, 2)
	assert.Equal(t, 3, store.calls)
}

func TestProcessResized_StoreTimeout(t *testing.T) {
	store := newFakeStore()
	store.block = true
	svc, _ := newTestService(store)
	svc.storeTimeout = 20 * time.Millisecond

	_, err := svc.ProcessResized(context.Background(), "80", Input{Filename: "a.png", Data: testPNG(t, 10, 10)})
	assert.ErrorIs(t, err, ErrStore)
	assert.Equal(t, 1, store.calls)
	assert.Empty(t, store.objects)
}

func TestProcessResized_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no filename", Input{Data: []byte("x")}},
		{"no data", Input{Filename: "a.png"}},
		{"nothing", Input{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc, generated := newTestService(store)

			_, err := svc.ProcessResized(context.Background(), "64", tt.in)
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Zero(t, *generated)
			assert.Zero(t, store.calls)

			_, err = svc.ProcessOriginal(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Zero(t, *generated)
			assert.Zero(t, store.calls)
		})
	}
}

func TestProcessResized_UnknownProfile(t *testing.T) {
	store := newFakeStore()
	svc, generated := newTestService(store)

	_, err := svc.ProcessResized(context.Background(), "999", Input{Filename: "a.png", Data: []byte("not even an image")})
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Zero(t, *generated)
	assert.Zero(t, store.calls)
}

func TestProcessResized_DecodeFailureStoresNothing(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.ProcessResized(context.Background(), "158", Input{Filename: "a.png", Data: []byte("GIF89a garbage")})
	assert.ErrorIs(t, err, ErrDecode)
	assert.Zero(t, store.calls)

	_, err = svc.ProcessOriginal(context.Background(), Input{Filename: "a.png", Data: []byte{0x89, 'P', 'N', 'G'}})
	assert.ErrorIs(t, err, ErrDecode)
	assert.Zero(t, store.calls)
}

func TestProcessOriginal_KeepsDimensions(t *testing.T) {
	store := newFakeStore()
	svc, generated := newTestService(store)

	res, err := svc.ProcessOriginal(context.Background(), Input{Filename: "c.png", Data: testPNG(t, 37, 91)})
	require.NoError(t, err)

	assert.Equal(t, 1, *generated)
	assert.Equal(t, OriginalEndpoint, res.Endpoint)
	assert.Equal(t, []string{""}, res.Sizes)
	require.Equal(t, []string{"images/" + res.Hash + ".webp"}, store.order)

	obj := store.objects[store.order[0]]
	assert.Equal(t, "image/webp", obj.contentType)
	assert.Equal(t, "public, max-age=31536000", obj.cacheControl)
	w, h := webpSize(t, obj.data)
	assert.Equal(t, 37, w)
	assert.Equal(t, 91, h)
}

func TestProcessOriginal_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failOn = 1
	svc, _ := newTestService(store)

	res, err := svc.ProcessOriginal(context.Background(), Input{Filename: "c.png", Data: testPNG(t, 8, 8)})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStore)
}

func TestNewService_UsesRandomIdentifiers(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, transform.NewEncoder(85, 4), DefaultProfiles(), 0)
	assert.Equal(t, defaultStoreTimeout, svc.storeTimeout)

	data := testPNG(t, 12, 12)
	a, err := svc.ProcessResized(context.Background(), "80", Input{Filename: "a.png", Data: data})
	require.NoError(t, err)
	b, err := svc.ProcessResized(context.Background(), "80", Input{Filename: "a.png", Data: data})
	require.NoError(t, err)

	assert.True(t, identifier.Valid(a.Hash))
	assert.True(t, identifier.Valid(b.Hash))
	assert.NotEqual(t, a.Hash, b.Hash, "identical uploads must not share an identifier")
	assert.Len(t, store.objects, 4)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "images/abc.webp", Key("abc", ""))
	assert.Equal(t, "images/abc@3x.webp", Key("abc", "@3x"))
}
