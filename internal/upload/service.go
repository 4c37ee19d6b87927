// Package upload turns one uploaded image into a set of stored WebP derivatives.
package upload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/radif/imageproc/internal/identifier"
	"github.com/radif/imageproc/internal/storage"
	"github.com/radif/imageproc/internal/transform"
)

// KeyPrefix is prepended to every stored derivative key.
const KeyPrefix = "images/"

const defaultStoreTimeout = 10 * time.Second

// ErrEmptyInput is returned when no file or an empty file was supplied.
var ErrEmptyInput = errors.New("empty input")

// ErrDecode is returned when the upload is not a decodable image.
var ErrDecode = transform.ErrDecode

// ErrUnknownProfile is returned when the requested profile is not configured.
var ErrUnknownProfile = errors.New("unknown size profile")

// ErrEncode is returned when a derivative cannot be resized or encoded.
var ErrEncode = errors.New("encode derivative")

// ErrStore is returned when storing a derivative fails or times out.
var ErrStore = errors.New("store derivative")

// Input is one uploaded file.
type Input struct {
	Filename string
	Data     []byte
}

// Result describes the derivatives produced for one upload.
type Result struct {
	Hash     string            `json:"hash"     example:"3f9a1c0d5e7b2a4c6d8e0f12"`
	Endpoint string            `json:"endpoint" example:"64"`
	Sizes    []string          `json:"sizes"    example:",@2x,@3x,@4x"`
	Format   string            `json:"format"   example:"webp"`
	URLs     map[string]string `json:"urls,omitempty"`
}

// Service runs the decode → resize → encode → store pipeline.
//
// Derivatives are stored one at a time in profile order. The first failure
// stops the request; derivatives already stored are left in place.
type Service struct {
	store        storage.Storage
	encoder      *transform.Encoder
	profiles     Profiles
	storeTimeout time.Duration
	newID        func() string
}

// NewService creates a new upload Service.
// A non-positive storeTimeout falls back to 10s.
func NewService(store storage.Storage, encoder *transform.Encoder, profiles Profiles, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Service{
		store:        store,
		encoder:      encoder,
		profiles:     profiles,
		storeTimeout: storeTimeout,
		newID:        identifier.New,
	}
}

// Profiles returns the service's profile table.
func (s *Service) Profiles() Profiles {
	return s.profiles
}

// ProcessResized stores one derivative per entry of the named profile.
func (s *Service) ProcessResized(ctx context.Context, profileName string, in Input) (*Result, error) {
	if in.empty() {
		return nil, ErrEmptyInput
	}
	profile, ok := s.profiles.Lookup(profileName)
	if !ok || len(profile.Entries) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profileName)
	}

	hash := s.newID()
	src, err := transform.Decode(in.Data)
	if err != nil {
		log.Printf("[upload] hash=%s profile=%s decode failed: %v", hash, profile.Name, err)
		return nil, err
	}

	res := &Result{
		Hash:     hash,
		Endpoint: profile.Name,
		Format:   "webp",
		URLs:     make(map[string]string, len(profile.Entries)),
	}
	for _, e := range profile.Entries {
		resized, err := transform.Resize(src, e.Spec)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrEncode, e.Suffix, err)
		}
		key, err := s.storeVariant(ctx, hash, e.Suffix, resized)
		if err != nil {
			log.Printf("[upload] hash=%s profile=%s suffix=%q failed after %d stored: %v",
				hash, profile.Name, e.Suffix, len(res.Sizes), err)
			return nil, err
		}
		res.Sizes = append(res.Sizes, e.Suffix)
		res.URLs[e.Suffix] = s.store.PublicURL(key)
	}

	log.Printf("[upload] hash=%s profile=%s stored %d derivatives", hash, profile.Name, len(res.Sizes))
	return res, nil
}

// ProcessOriginal stores a single WebP conversion at the source dimensions.
func (s *Service) ProcessOriginal(ctx context.Context, in Input) (*Result, error) {
	if in.empty() {
		return nil, ErrEmptyInput
	}

	hash := s.newID()
	src, err := transform.Decode(in.Data)
	if err != nil {
		log.Printf("[upload] hash=%s original decode failed: %v", hash, err)
		return nil, err
	}

	key, err := s.storeVariant(ctx, hash, "", src)
	if err != nil {
		log.Printf("[upload] hash=%s original failed: %v", hash, err)
		return nil, err
	}

	b := src.Bounds()
	log.Printf("[upload] hash=%s original stored %dx%d", hash, b.Dx(), b.Dy())
	return &Result{
		Hash:     hash,
		Endpoint: OriginalEndpoint,
		Sizes:    []string{""},
		Format:   "webp",
		URLs:     map[string]string{"": s.store.PublicURL(key)},
	}, nil
}

// storeVariant encodes img and writes it under the derivative key.
func (s *Service) storeVariant(ctx context.Context, hash, suffix string, img image.Image) (string, error) {
	data, err := s.encoder.Encode(img)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrEncode, suffix, err)
	}

	key := Key(hash, suffix)
	putCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.Put(putCtx, key, transform.ContentType, storage.CacheForever, data); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrStore, key, err)
	}
	return key, nil
}

// Key returns the storage key of one derivative.
func Key(hash, suffix string) string {
	return KeyPrefix + hash + suffix + transform.Extension
}

func (in Input) empty() bool {
	return in.Filename == "" || len(in.Data) == 0
}
