// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"context"
	"testing"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/domain/mocks"
	"github.com/CrawX/go-imap-mailsync/log"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronizer_ScheduleReconnects(t *testing.T) {
	session := newFakeSession(uidRange(1, 5)...)
	session.setState(domain.Error)
	s, cache := newTestSynchronizer(t, session)
	s.configuration.Interval = 10 * time.Millisecond

	s.Start(context.Background(), []string{TEST_FOLDER})
	assert.Eventually(t, func() bool {
		cursor, err := cache.GetCursor(context.Background(), TEST_FOLDER)
		return err == nil && cursor != nil && cursor.LastSeenUID == 5
	}, time.Second, 5*time.Millisecond)
	s.StopSchedule()

	assert.Equal(t, 1, session.reconnectCount())
	assert.Equal(t, domain.Ready, session.State())
}

func TestSynchronizer_ScheduleSkipsDisconnected(t *testing.T) {
	session := newFakeSession(uidRange(1, 5)...)
	session.setState(domain.Disconnected)
	s, cache := newTestSynchronizer(t, session)
	s.configuration.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx, []string{TEST_FOLDER})
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Wait()

	assert.Nil(t, cursorOf(t, cache))
	assert.Equal(t, 0, session.reconnectCount())
}

func TestSynchronizer_StartAfterStop(t *testing.T) {
	session := newFakeSession()
	s, _ := newTestSynchronizer(t, session)
	s.Stop()

	s.Start(context.Background(), []string{TEST_FOLDER})
	s.Wait()
	assert.Nil(t, s.schedCancel)
}

func TestSynchronizer_Evict(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		evicted   int64
		exhausted bool
	}{
		{"evicted messages are loaded again", 3, 12, false},
		{"nothing evicted", 3, 0, true},
		{"eviction disabled", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			cache := mocks.NewMockCache(ctrl)
			s, err := NewSynchronizer(cache, nil, EvictAfter(tt.days))
			require.NoError(t, err)
			s.l = log.NullLogger()
			s.setExhausted(TEST_FOLDER, true)

			if tt.days > 0 {
				cache.EXPECT().
					EvictOlderThan(gomock.Any(), gomock.Eq(tt.days)).
					Return(tt.evicted, nil)
			}

			evicted, err := s.Evict(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, tt.evicted, evicted)
			assert.Equal(t, tt.exhausted, s.isExhausted(TEST_FOLDER))
		})
	}
}
