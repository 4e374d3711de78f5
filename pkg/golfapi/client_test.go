package golfapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "courses": [{
    "id": 1234,
    "course_name": "Old Course",
    "club_name": "Acme Golf Club",
    "location": {"address": "1 Links Rd, Clarksville, TN"},
    "tees": {
      "male": [{
        "tee_name": "Blue", "total_yards": 6710, "course_rating": 72.1, "bogey_rating": 96.4,
        "slope_rating": 131, "front_course_rating": 36.0, "front_bogey_rating": 48.1,
        "front_slope_rating": 129, "back_course_rating": 36.1, "back_bogey_rating": 48.3,
        "back_slope_rating": 133,
        "holes": [{"par": 4, "yardage": 402, "handicap": 7}, {"par": 3, "yardage": 178, "handicap": 15}]
      }],
      "female": [{"tee_name": "Red", "total_yards": 5230, "holes": []}]
    }
  }]
}`

func TestSearchCourses(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("search_query")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", WithRateLimit(0))
	courses, err := c.SearchCourses(context.Background(), "  old course ")
	require.NoError(t, err)

	assert.Equal(t, "Key secret", gotAuth)
	assert.Equal(t, "old course", gotQuery)
	assert.Equal(t, "/v1/search", gotPath)

	require.Len(t, courses, 1)
	course := courses[0]
	assert.Equal(t, 1234, course.ID)
	assert.Equal(t, "Old Course", course.CourseName)
	assert.Equal(t, "Acme Golf Club", course.ClubName)
	assert.Equal(t, 2, course.Tees.Count())

	all := course.Tees.All()
	assert.Equal(t, "male", all[0].Gender)
	assert.Equal(t, "female", all[1].Gender)

	blue := all[0].Tee
	assert.Equal(t, 131, blue.SlopeRating)
	assert.Equal(t, 48.3, blue.BackBogeyRating)
	assert.Equal(t, []models.HoleInfo{{Par: 4, Yardage: 402, Handicap: 7}, {Par: 3, Yardage: 178, Handicap: 15}}, blue.Holes)
}

func TestSearchCoursesBlankQuery(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	courses, err := NewClient(srv.URL, "k").SearchCourses(context.Background(), " \t ")
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Zero(t, calls.Load())
}

func TestSearchCoursesFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"courses": [`)) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			courses, err := NewClient(srv.URL, "k").SearchCourses(context.Background(), "acme")
			assert.ErrorIs(t, err, models.ErrIO)
			assert.Nil(t, courses)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url, "k").SearchCourses(context.Background(), "acme")
		assert.ErrorIs(t, err, models.ErrIO)
	})
}

func TestSearchCoursesMissingCourses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	courses, err := NewClient(srv.URL, "k").SearchCourses(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func TestSearchCoursesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	cache := &memCache{data: map[string][]byte{}}
	c := NewClient(srv.URL, "k", WithCache(cache, 10*time.Minute))

	first, err := c.SearchCourses(context.Background(), "Old Course")
	require.NoError(t, err)
	second, err := c.SearchCourses(context.Background(), "old course")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 10*time.Minute, cache.ttl)
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithRateLimit(0.001))
	_, err := c.SearchCourses(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.SearchCourses(ctx, "second")
	assert.ErrorIs(t, err, models.ErrIO)
}

func TestRedisCacheUnreachableIsMiss(t *testing.T) {
	assert.Nil(t, OpenRedis("", "", 0))

	rc := OpenRedis("127.0.0.1:1", "", 0)
	require.NotNil(t, rc)
	cache := NewRedisCache(rc)
	defer cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, ok := cache.Get(ctx, "golfapi:search:acme")
	assert.False(t, ok)
}
