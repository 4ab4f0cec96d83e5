package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestUnknownUserHasZeroState() {
	st, err := s.store.Get(context.Background(), "nobody@example.com")
	s.Require().NoError(err)
	s.False(st.DocumentVerified)
	s.False(st.LivenessVerified)
	s.Nil(st.LastDocumentUpload)
	s.Nil(st.LastLivenessCheck)
}

func (s *InMemoryStoreSuite) TestMarkDocumentVerified() {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.Require().NoError(s.store.MarkDocumentVerified(context.Background(), "alex@example.com", at))

	st, err := s.store.Get(context.Background(), "alex@example.com")
	s.Require().NoError(err)
	s.True(st.DocumentVerified)
	s.False(st.LivenessVerified)
	s.Require().NotNil(st.LastDocumentUpload)
	s.Equal(at, *st.LastDocumentUpload)
}

func (s *InMemoryStoreSuite) TestMarkLivenessVerifiedKeepsDocumentFlag() {
	ctx := context.Background()
	s.Require().NoError(s.store.MarkDocumentVerified(ctx, "alex@example.com", time.Now()))
	s.Require().NoError(s.store.MarkLivenessVerified(ctx, "alex@example.com", time.Now()))

	st, err := s.store.Get(ctx, "alex@example.com")
	s.Require().NoError(err)
	s.True(st.DocumentVerified)
	s.True(st.LivenessVerified)
}

func (s *InMemoryStoreSuite) TestStatesAreIsolatedPerUser() {
	ctx := context.Background()
	s.Require().NoError(s.store.MarkLivenessVerified(ctx, "alex@example.com", time.Now()))

	other, err := s.store.Get(ctx, "sarah@example.com")
	s.Require().NoError(err)
	s.False(other.LivenessVerified)
}
