package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cipherledger/internal/database"
	"cipherledger/internal/models"
)

type GrantRepositoryTestSuite struct {
	suite.Suite
	db   *database.DB
	repo GrantRepositoryInterface
}

func (s *GrantRepositoryTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewGrantRepository(s.db.DB)
}

func (s *GrantRepositoryTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestGrantRepositorySuite(t *testing.T) {
	suite.Run(t, new(GrantRepositoryTestSuite))
}

func (s *GrantRepositoryTestSuite) grant(storeKey string, start int64) *models.DecryptionGrant {
	return &models.DecryptionGrant{
		StoreKey:       storeKey,
		AccountAddress: "0x1111111111111111111111111111111111111111",
		PublicKey:      []byte("public-key-bytes................"),
		PrivateKey:     []byte("private-key-bytes..............."),
		Signature:      []byte("signature"),
		ContractSet:    "0xledger",
		StartTimestamp: start,
		DurationDays:   365,
	}
}

func (s *GrantRepositoryTestSuite) TestSaveAndGetGrant() {
	grant := s.grant("0x1111:abcd", time.Now().Unix())
	s.Require().NoError(s.repo.SaveGrant(grant))

	found, err := s.repo.GetGrantByStoreKey("0x1111:abcd")
	s.Require().NoError(err)
	s.Equal(grant.AccountAddress, found.AccountAddress)
	s.Equal(grant.Signature, found.Signature)
	s.Equal(grant.ContractSet, found.ContractSet)
	s.Equal(int64(365), found.DurationDays)
}

func (s *GrantRepositoryTestSuite) TestSaveGrant_UpsertsByStoreKey() {
	start := time.Now().Unix()
	s.Require().NoError(s.repo.SaveGrant(s.grant("0x1111:abcd", start)))

	replacement := s.grant("0x1111:abcd", start+100)
	replacement.Signature = []byte("fresh signature")
	s.Require().NoError(s.repo.SaveGrant(replacement))

	var count int64
	s.Require().NoError(s.db.Model(&models.DecryptionGrant{}).Count(&count).Error)
	s.Equal(int64(1), count)

	found, err := s.repo.GetGrantByStoreKey("0x1111:abcd")
	s.Require().NoError(err)
	s.Equal([]byte("fresh signature"), found.Signature)
	s.Equal(start+100, found.StartTimestamp)
}

func (s *GrantRepositoryTestSuite) TestSaveGrant_Nil() {
	s.Error(s.repo.SaveGrant(nil))
}

func (s *GrantRepositoryTestSuite) TestGetGrant_NotFound() {
	_, err := s.repo.GetGrantByStoreKey("0xmissing:ffff")
	s.ErrorIs(err, ErrGrantNotFound)
}

func (s *GrantRepositoryTestSuite) TestSaveAndGetKeyPair() {
	pair := &models.KeyPairRecord{
		StoreKey:       models.KeyPairStoreKey("0x2222222222222222222222222222222222222222"),
		AccountAddress: "0x2222222222222222222222222222222222222222",
		PublicKey:      []byte("pub"),
		PrivateKey:     []byte("priv"),
	}
	s.Require().NoError(s.repo.SaveKeyPair(pair))

	found, err := s.repo.GetKeyPairByStoreKey(pair.StoreKey)
	s.Require().NoError(err)
	s.Equal([]byte("pub"), found.PublicKey)
	s.Equal([]byte("priv"), found.PrivateKey)
}

func (s *GrantRepositoryTestSuite) TestGetKeyPair_NotFound() {
	_, err := s.repo.GetKeyPairByStoreKey(models.KeyPairStoreKey("0xmissing"))
	s.ErrorIs(err, ErrKeyPairNotFound)
}

func (s *GrantRepositoryTestSuite) TestDeleteExpiredGrants() {
	now := time.Now()

	expired := s.grant("0x1111:old", now.AddDate(-2, 0, 0).Unix())
	live := s.grant("0x1111:new", now.Unix())
	s.Require().NoError(s.repo.SaveGrant(expired))
	s.Require().NoError(s.repo.SaveGrant(live))

	deleted, err := s.repo.DeleteExpiredGrants(now)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.repo.GetGrantByStoreKey("0x1111:old")
	s.ErrorIs(err, ErrGrantNotFound)

	_, err = s.repo.GetGrantByStoreKey("0x1111:new")
	s.NoError(err)
}
