package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

// IntegrationTestSuite runs the repository and quota ledger tests against
// real PostgreSQL and Redis containers.
type IntegrationTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *tcpostgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pool        *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger

	users    interfaces.UserRepository
	stories  interfaces.StoryRepository
	chapters interfaces.ChapterRepository
	quota    interfaces.QuotaLedger
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.pgContainer, err = tcpostgres.Run(s.ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("test_db"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get postgres connection string")

	s.pool, err = pgxpool.New(s.ctx, pgConnStr)
	require.NoError(s.T(), err, "Failed to connect to test postgres")

	require.NoError(s.T(), Migrate(pgConnStr, s.logger), "Failed to run migrations")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.redisClient = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err(), "Failed to connect to test redis")

	s.users = NewPgUserRepository(s.pool, s.logger)
	s.stories = NewPgStoryRepository(s.pool, s.logger)
	s.chapters = NewPgChapterRepository(s.pool, s.logger)
	s.quota = NewRedisQuotaLedger(s.redisClient, s.logger)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate postgres container", zap.Error(err))
		}
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE users CASCADE")
	require.NoError(s.T(), err, "Failed to truncate users table")
}

func (s *IntegrationTestSuite) createUser() *models.User {
	user := &models.User{
		Username:     "kid-" + uuid.NewString()[:8],
		PasswordHash: "hash",
		Role:         models.RoleKid,
		DailyQuota:   models.DefaultDailyQuota,
	}
	require.NoError(s.T(), s.users.Create(s.ctx, user))
	return user
}

func (s *IntegrationTestSuite) createInteractiveStory(userID uuid.UUID) *models.Story {
	story := &models.Story{
		UserID:   userID,
		Title:    "Chuyến phiêu lưu",
		Status:   models.StoryStatusPublished,
		Mode:     models.StoryModeInteractive,
		Metadata: map[string]string{"mood": "Vui vẻ"},
	}
	chapter := &models.Chapter{
		ChapterNumber: 1,
		Content:       models.ChapterContent{Text: "Mở đầu"},
		UserPrompt:    "Một chú mèo con",
	}
	require.NoError(s.T(), s.stories.CreateStoryWithChapter(s.ctx, story, chapter, nil))
	return story
}

func (s *IntegrationTestSuite) TestQuota_LimitAndReset() {
	t := s.T()
	userID := uuid.New()
	limit := 3

	for i := 0; i < limit; i++ {
		require.NoError(t, s.quota.CheckAndIncrement(s.ctx, userID, limit), "call %d within limit", i+1)
	}
	err := s.quota.CheckAndIncrement(s.ctx, userID, limit)
	require.ErrorIs(t, err, models.ErrQuotaExceeded)

	remaining, err := s.quota.Remaining(s.ctx, userID, limit)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)

	require.NoError(t, s.quota.Reset(s.ctx, userID))
	remaining, err = s.quota.Remaining(s.ctx, userID, limit)
	require.NoError(t, err)
	require.Equal(t, limit, remaining)
}

func (s *IntegrationTestSuite) TestQuota_DayRollover() {
	t := s.T()
	userID := uuid.New()
	limit := 2

	ledger := s.quota.(*redisQuotaLedger)
	today := time.Now()
	ledger.now = func() time.Time { return today }

	require.NoError(t, s.quota.CheckAndIncrement(s.ctx, userID, limit))
	require.NoError(t, s.quota.CheckAndIncrement(s.ctx, userID, limit))
	require.ErrorIs(t, s.quota.CheckAndIncrement(s.ctx, userID, limit), models.ErrQuotaExceeded)

	// The next day uses a fresh key, so the counter starts over.
	ledger.now = func() time.Time { return today.AddDate(0, 0, 1) }
	defer func() { ledger.now = time.Now }()

	require.NoError(t, s.quota.CheckAndIncrement(s.ctx, userID, limit))
	remaining, err := s.quota.Remaining(s.ctx, userID, limit)
	require.NoError(t, err)
	require.Equal(t, limit-1, remaining)
}

func (s *IntegrationTestSuite) TestQuota_ConcurrentIncrementsNeverOvershoot() {
	t := s.T()
	userID := uuid.New()
	limit := 5
	attempts := 20

	var wg sync.WaitGroup
	granted := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.quota.CheckAndIncrement(s.ctx, userID, limit); err == nil {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	require.Equal(t, limit, len(granted))
}

func (s *IntegrationTestSuite) TestChapters_ConcurrentContinuationsKeepNumbersUnique() {
	t := s.T()
	user := s.createUser()
	story := s.createInteractiveStory(user.ID)

	// Each writer mimics the orchestrator: read the count, try count+1,
	// re-read on conflict.
	writers := 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for {
				count, err := s.chapters.CountByStory(s.ctx, story.ID)
				if err != nil {
					t.Errorf("count failed: %v", err)
					return
				}
				chapter := &models.Chapter{
					StoryID:       story.ID,
					ChapterNumber: count + 1,
					Content:       models.ChapterContent{Text: fmt.Sprintf("Chương từ writer %d", n)},
					UserPrompt:    "Tiếp tục phiêu lưu",
				}
				err = s.chapters.Create(s.ctx, chapter)
				if err == nil {
					return
				}
				if !errors.Is(err, models.ErrChapterNumberConflict) {
					t.Errorf("unexpected create error: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	chapters, err := s.chapters.ListByStory(s.ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, chapters, writers+1)

	seen := make(map[int]bool)
	for _, ch := range chapters {
		require.False(t, seen[ch.ChapterNumber], "duplicate chapter number %d", ch.ChapterNumber)
		seen[ch.ChapterNumber] = true
	}
	for n := 1; n <= writers+1; n++ {
		require.True(t, seen[n], "missing chapter number %d", n)
	}
}

func (s *IntegrationTestSuite) TestStories_CreateFetchRoundTrip() {
	t := s.T()
	user := s.createUser()

	story := &models.Story{
		UserID: user.ID,
		Title:  "Chú mèo dũng cảm",
		Status: models.StoryStatusPublished,
		Mode:   models.StoryModeOneShot,
		Metadata: map[string]string{
			"moral": "Hãy dũng cảm",
			"mood":  "Vui vẻ",
		},
	}
	imageURL := "http://img/1.jpg"
	chapter := &models.Chapter{
		ChapterNumber: 1,
		Content:       models.ChapterContent{Text: "Ngày xửa ngày xưa...", Moral: "Hãy dũng cảm"},
		UserPrompt:    "Một chú mèo con",
		MoodTag:       "Vui vẻ",
		ImageURL:      &imageURL,
	}
	moodTag := &models.MoodTag{Mood: "Vui vẻ"}
	require.NoError(t, s.stories.CreateStoryWithChapter(s.ctx, story, chapter, moodTag))

	fetched, err := s.stories.GetByID(s.ctx, story.ID)
	require.NoError(t, err)
	require.Equal(t, story.Title, fetched.Title)
	require.Equal(t, story.Mode, fetched.Mode)
	require.Equal(t, story.Metadata, fetched.Metadata)

	chapters, err := s.chapters.ListByStory(s.ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	require.Equal(t, chapter.Content, chapters[0].Content)
	require.NotNil(t, chapters[0].ImageURL)
	require.Equal(t, imageURL, *chapters[0].ImageURL)
}

func (s *IntegrationTestSuite) TestStories_DeleteCascades() {
	t := s.T()
	user := s.createUser()
	story := s.createInteractiveStory(user.ID)

	require.NoError(t, s.stories.Delete(s.ctx, story.ID))

	_, err := s.stories.GetByID(s.ctx, story.ID)
	require.ErrorIs(t, err, models.ErrStoryNotFound)

	count, err := s.chapters.CountByStory(s.ctx, story.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func (s *IntegrationTestSuite) TestUsers_DuplicateUsername() {
	t := s.T()
	user := s.createUser()

	dup := &models.User{
		Username:     user.Username,
		PasswordHash: "hash",
		Role:         models.RoleKid,
		DailyQuota:   models.DefaultDailyQuota,
	}
	err := s.users.Create(s.ctx, dup)
	require.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(IntegrationTestSuite))
}
