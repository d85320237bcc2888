package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/identity"
	"github.com/foodies/foodies-api/internal/media"
	"github.com/foodies/foodies-api/internal/repository/memory"
	"github.com/foodies/foodies-api/internal/repository/ports"
	"github.com/foodies/foodies-api/internal/util"
)

// failingUsers wraps a real repository and fails the recipe-list writes on
// demand.
type failingUsers struct {
	ports.UserRepository
	addRecipeErr    error
	removeRecipeErr error
}

func (f *failingUsers) AddRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	if f.addRecipeErr != nil {
		return f.addRecipeErr
	}
	return f.UserRepository.AddRecipe(ctx, userID, recipeID)
}

func (f *failingUsers) RemoveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	if f.removeRecipeErr != nil {
		return f.removeRecipeErr
	}
	return f.UserRepository.RemoveRecipe(ctx, userID, recipeID)
}

// lookupBarrier holds every FindByResetToken caller until all expected
// callers have finished their lookup.
type lookupBarrier struct {
	ports.UserRepository
	arrived sync.WaitGroup
}

func newLookupBarrier(users ports.UserRepository, callers int) *lookupBarrier {
	b := &lookupBarrier{UserRepository: users}
	b.arrived.Add(callers)
	return b
}

func (b *lookupBarrier) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	user, err := b.UserRepository.FindByResetToken(ctx, token, now)
	b.arrived.Done()
	b.arrived.Wait()
	return user, err
}

// directTransactor runs fn without any rollback, like a store without
// multi-document transactions.
type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (directTransactor) Atomic() bool { return false }

type sentMessage struct {
	to      string
	subject string
	body    string
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	err      error
}

func (n *recordingNotifier) Dispatch(to, subject, htmlBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, sentMessage{to: to, subject: subject, body: htmlBody})
	return n.err
}

func (n *recordingNotifier) sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.messages...)
}

type fakeVerifier struct {
	identity *domain.FederatedIdentity
	err      error
	tokens   []string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	id := *f.identity
	return &id, nil
}

type storedObject struct {
	bucket      string
	key         string
	contentType string
	data        []byte
}

type fakeStorage struct {
	objects []storedObject
	removed []string
	url     func(bucket, key string) string
	err     error
	// failOn makes the nth upload (1-based) fail with err; zero fails all.
	failOn  int
	uploads int
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	s.uploads++
	if s.err != nil && (s.failOn == 0 || s.failOn == s.uploads) {
		return "", s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects = append(s.objects, storedObject{bucket: bucket, key: objectName, contentType: contentType, data: data})
	if s.url == nil {
		return "", nil
	}
	return s.url(bucket, objectName), nil
}

func (s *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	s.removed = append(s.removed, bucket+"/"+objectName)
	kept := s.objects[:0]
	for _, obj := range s.objects {
		if obj.bucket != bucket || obj.key != objectName {
			kept = append(kept, obj)
		}
	}
	s.objects = kept
	return nil
}

type stubImageProcessor struct {
	output      []byte
	contentType string
	err         error

	calls   int
	last    media.Upload
	lastMax int
}

func (s *stubImageProcessor) Process(ctx context.Context, upload media.Upload, maxWidth int) (*media.Result, error) {
	s.calls++
	s.last = upload
	s.lastMax = maxWidth
	if s.err != nil {
		return nil, s.err
	}
	ct := s.contentType
	if ct == "" {
		ct = upload.ContentType
	}
	return &media.Result{
		Bytes:       append([]byte(nil), s.output...),
		ContentType: ct,
		Resized:     true,
	}, nil
}

func newImageUpload(data []byte, contentType string) media.Upload {
	return media.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    "dish.jpg",
		ContentType: contentType,
	}
}

func newTestAuthService(t *testing.T, store *memory.Store, verifier *fakeVerifier) (*AuthService, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	var v identity.Verifier
	if verifier != nil {
		v = verifier
	}
	svc := NewAuthService(store.Users(), util.NewJWTManager("test-secret", 0), v, notifier, nil, AuthServiceConfig{
		BcryptCost:  4,
		FrontendURL: "https://foodies.test",
	})
	return svc, notifier
}

func seedUser(t *testing.T, store *memory.Store, username, email string) *domain.User {
	t.Helper()
	hash, err := util.HashPassword("secret1", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := store.Users().Create(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       domain.DefaultAvatarURL,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func validRecipeInput(title string) domain.RecipeInput {
	return domain.RecipeInput{
		Title:       title,
		Ingredients: "flour, milk, eggs",
		Cooking:     "mix, rest, fry",
		Duration:    25,
		Category:    "dessert",
		Difficulty:  "easy",
		Images: domain.RecipeImages{
			Regular: "https://cdn.test/r.jpg",
			Large:   "https://cdn.test/l.jpg",
		},
	}
}
