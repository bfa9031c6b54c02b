package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/metropass/settlement-engine/internal/application/services"
	"github.com/metropass/settlement-engine/internal/application/services/testhelpers"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type CatalogServiceTestSuite struct {
	suite.Suite
	testDB         *testhelpers.TestDatabase
	catalogService *services.CatalogService
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func (suite *CatalogServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.catalogService = services.NewCatalogService(
		postgres.NewCatalogRepository(suite.testDB.DB),
		postgres.NewPassengerRepository(suite.testDB.DB),
		slog.Default(),
	)
}

func (suite *CatalogServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *CatalogServiceTestSuite) TearDownTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *CatalogServiceTestSuite) Test_GetPrice() {
	ctx := context.Background()

	tt, err := suite.catalogService.GetPrice(ctx, "SINGLE")
	suite.Require().NoError(err)
	suite.Equal(int64(12000), tt.Price)
	suite.Equal(24*time.Hour, tt.Validity)

	_, err = suite.catalogService.GetPrice(ctx, "NOPE")
	suite.ErrorIs(err, postgres.ErrTicketTypeNotFound)
}

func (suite *CatalogServiceTestSuite) Test_ListEligible_AdultSeesUniversalOnly() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	eligible, err := suite.catalogService.ListEligible(ctx, p.ID)
	suite.Require().NoError(err)

	codes := make(map[string]bool)
	for _, tt := range eligible {
		codes[tt.Code] = true
	}
	suite.True(codes["SINGLE"])
	suite.True(codes["DAILY"])
	suite.True(codes["MONTHLY"])
	suite.False(codes["STUDENT_MONTHLY"])
	suite.False(codes["FREE"])
}

func (suite *CatalogServiceTestSuite) Test_ListEligible_Student() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB, testhelpers.WithStudentID("STU-42"))

	eligible, err := suite.catalogService.ListEligible(ctx, p.ID)
	suite.Require().NoError(err)

	var hasStudent bool
	for _, tt := range eligible {
		if tt.Code == "STUDENT_MONTHLY" {
			hasStudent = true
		}
	}
	suite.True(hasStudent)
}

func (suite *CatalogServiceTestSuite) Test_BestTicket_FreeWinsForSenior() {
	ctx := context.Background()
	t := suite.T()

	senior := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB,
		testhelpers.WithDateOfBirth(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)))

	best, err := suite.catalogService.BestTicket(ctx, senior.ID)
	suite.Require().NoError(err)
	suite.Equal("FREE", best.Code)
	suite.Equal(int64(0), best.Price)
}

func (suite *CatalogServiceTestSuite) Test_BestTicket_DensityForAdult() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	best, err := suite.catalogService.BestTicket(ctx, p.ID)
	suite.Require().NoError(err)

	// MONTHLY: 30d / 300000 beats DAILY 1d / 40000 and the rest.
	suite.Equal("MONTHLY", best.Code)
}

func (suite *CatalogServiceTestSuite) Test_BestTicket_UnknownPassenger() {
	ctx := context.Background()

	_, err := suite.catalogService.BestTicket(ctx, "no-such-passenger")
	suite.ErrorIs(err, postgres.ErrPassengerNotFound)
}
