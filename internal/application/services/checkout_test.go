package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/application/services"
	"github.com/metropass/settlement-engine/internal/application/services/testhelpers"
	"github.com/metropass/settlement-engine/internal/config"
	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
)

type CheckoutServiceTestSuite struct {
	suite.Suite
	testDB          *testhelpers.TestDatabase
	cartRepo        *postgres.CartRepository
	catalogRepo     *postgres.CatalogRepository
	passengerRepo   *postgres.PassengerRepository
	invoiceRepo     *postgres.InvoiceRepository
	mockProvider    *mockCheckoutClient
	checkoutService *services.CheckoutService
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}

func (suite *CheckoutServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.cartRepo = postgres.NewCartRepository(suite.testDB.DB)
	suite.catalogRepo = postgres.NewCatalogRepository(suite.testDB.DB)
	suite.passengerRepo = postgres.NewPassengerRepository(suite.testDB.DB)
	suite.invoiceRepo = postgres.NewInvoiceRepository(suite.testDB.DB)
}

func (suite *CheckoutServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *CheckoutServiceTestSuite) SetupTest() {
	suite.mockProvider = &mockCheckoutClient{}
	suite.checkoutService = services.NewCheckoutService(
		postgres.NewTransactionCoordinator(suite.testDB.DB),
		suite.cartRepo,
		suite.catalogRepo,
		suite.passengerRepo,
		suite.mockProvider,
		config.ProviderConfig{
			SuccessURL: "https://app.example/success",
			CancelURL:  "https://app.example/cancel",
		},
		slog.Default(),
	)
}

func (suite *CheckoutServiceTestSuite) TearDownTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_FromCart() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 50000)
	testhelpers.AddCartItem(t, ctx, suite.testDB.DB, p.ID, "DAILY", time.Now())

	result, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{PassengerID: p.ID})
	suite.Require().NoError(err)

	suite.True(result.Paid)
	suite.Equal(int64(10000), result.RemainingBalance)
	suite.Require().NotNil(result.Invoice)
	suite.Equal(int64(40000), result.Invoice.TotalPrice)
	suite.Require().Len(result.Invoice.Items, 1)
	suite.Equal(domain.StatusIssued, result.Invoice.Items[0].Status)
	suite.Equal("DAILY", result.Invoice.Items[0].TicketTypeCode)

	// Cart was emptied in the same transaction.
	lines, err := suite.cartRepo.ListLines(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Empty(lines)

	// Invoice persisted with the item.
	stored, err := suite.invoiceRepo.FindByID(ctx, result.Invoice.ID)
	suite.Require().NoError(err)
	suite.Len(stored.Items, 1)
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_InsufficientBalanceIsAResult() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 10000)
	testhelpers.AddCartItem(t, ctx, suite.testDB.DB, p.ID, "DAILY", time.Now())

	result, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{PassengerID: p.ID})
	suite.Require().NoError(err)

	suite.False(result.Paid)
	suite.Nil(result.Invoice)
	suite.Equal(int64(10000), result.Balance)
	suite.Equal(int64(40000), result.Required)

	// Nothing was applied: balance intact, cart intact, no invoice.
	wallet, err := postgres.NewWalletRepository(suite.testDB.DB).FindByPassengerID(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(10000), wallet.Balance)

	lines, err := suite.cartRepo.ListLines(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Len(lines, 1)

	invoices, err := suite.invoiceRepo.ListByPassenger(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Empty(invoices)
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_ExplicitItems() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 30000)

	result, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{
		PassengerID: p.ID,
		Items: []services.TicketSelection{
			{TicketTypeCode: "SINGLE", LineID: "L2", LineName: "Line 2", StartStation: "Central", EndStation: "Harbor", Quantity: 2},
		},
	})
	suite.Require().NoError(err)

	suite.True(result.Paid)
	suite.Equal(int64(24000), result.Invoice.TotalPrice)
	suite.Len(result.Invoice.Items, 2)
	suite.Equal(int64(6000), result.RemainingBalance)
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_FreeTicketSkipsDebit() {
	ctx := context.Background()
	t := suite.T()

	// Senior passenger: eligible for the FREE concession ticket.
	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB,
		testhelpers.WithDateOfBirth(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)))
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 7000)

	result, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{
		PassengerID: p.ID,
		Items:       []services.TicketSelection{{TicketTypeCode: "FREE", LineID: "L1"}},
	})
	suite.Require().NoError(err)

	suite.True(result.Paid)
	suite.Equal(int64(0), result.Invoice.TotalPrice)
	suite.Equal(int64(7000), result.RemainingBalance)
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_EligibilityEnforced() {
	ctx := context.Background()
	t := suite.T()

	// Adult without a student id cannot buy the student pass.
	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 200000)

	_, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{
		PassengerID: p.ID,
		Items:       []services.TicketSelection{{TicketTypeCode: "STUDENT_MONTHLY", LineID: "L1"}},
	})
	suite.Require().Error(err)
	svcErr, ok := application.IsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(application.ErrCodeInvalidInput, svcErr.Code)
}

func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_EmptyCart() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	_, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{PassengerID: p.ID})
	suite.Require().Error(err)
	svcErr, ok := application.IsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(application.ErrCodeInvalidInput, svcErr.Code)
}

// Invoice prices are captured at purchase time. Repricing the catalog
// afterwards must not change an issued invoice.
func (suite *CheckoutServiceTestSuite) Test_WalletPurchase_PriceImmutableAfterCatalogChange() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.FundWallet(t, ctx, suite.testDB.DB, p.ID, 50000)
	testhelpers.AddCartItem(t, ctx, suite.testDB.DB, p.ID, "DAILY", time.Now())

	result, err := suite.checkoutService.WalletPurchase(ctx, services.WalletPurchaseCommand{PassengerID: p.ID})
	suite.Require().NoError(err)
	suite.Require().True(result.Paid)

	suite.Require().NoError(suite.catalogRepo.UpdatePrice(ctx, "DAILY", 99000))
	defer func() {
		suite.Require().NoError(suite.catalogRepo.UpdatePrice(ctx, "DAILY", 40000))
	}()

	stored, err := suite.invoiceRepo.FindByID(ctx, result.Invoice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(40000), stored.TotalPrice)
	suite.Equal(int64(40000), stored.Items[0].Price)
}

func (suite *CheckoutServiceTestSuite) Test_HostedCheckout_BuildsSessionFromCart() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	testhelpers.AddCartItem(t, ctx, suite.testDB.DB, p.ID, "SINGLE", time.Now())
	testhelpers.AddCartItem(t, ctx, suite.testDB.DB, p.ID, "DAILY", time.Now())

	redirect, err := suite.checkoutService.HostedCheckout(ctx, services.HostedCheckoutCommand{PassengerID: p.ID})
	suite.Require().NoError(err)
	suite.Equal("cs_test", redirect.SessionID)
	suite.Equal("https://checkout.example/cs_test", redirect.URL)

	req := suite.mockProvider.lastRequest()
	suite.Equal(p.ID, req.ClientReference)
	suite.Equal(p.Email, req.CustomerEmail)
	suite.Equal(provider.PurposeTicketPurchase, req.Metadata[provider.MetadataKeyPurpose])
	suite.Len(req.LineItems, 2)

	var total int64
	for _, li := range req.LineItems {
		total += li.UnitAmount * li.Quantity
	}
	suite.Equal(int64(52000), total)

	// No local state written for hosted checkout.
	invoices, err := suite.invoiceRepo.ListByPassenger(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Empty(invoices)
}

func (suite *CheckoutServiceTestSuite) Test_TopUpSession() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	redirect, err := suite.checkoutService.TopUpSession(ctx, services.TopUpSessionCommand{
		PassengerID: p.ID,
		Amount:      100000,
	})
	suite.Require().NoError(err)
	suite.NotEmpty(redirect.URL)

	req := suite.mockProvider.lastRequest()
	suite.Equal(provider.PurposeWalletTopUp, req.Metadata[provider.MetadataKeyPurpose])
	suite.Require().Len(req.LineItems, 1)
	suite.Equal(int64(100000), req.LineItems[0].UnitAmount)
}

func (suite *CheckoutServiceTestSuite) Test_TopUpSession_RejectsNonPositiveAmount() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	_, err := suite.checkoutService.TopUpSession(ctx, services.TopUpSessionCommand{PassengerID: p.ID, Amount: 0})
	suite.True(domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
}

func (suite *CheckoutServiceTestSuite) Test_GuestCheckout_EmbedsLinesInMetadata() {
	ctx := context.Background()

	redirect, err := suite.checkoutService.GuestCheckout(ctx, services.GuestCheckoutCommand{
		Email: "guest@example.com",
		Items: []services.TicketSelection{
			{TicketTypeCode: "SINGLE", LineID: "L3", LineName: "Line 3", StartStation: "Airport", EndStation: "Central", Quantity: 2},
		},
	})
	suite.Require().NoError(err)
	suite.NotEmpty(redirect.URL)

	req := suite.mockProvider.lastRequest()
	suite.Empty(req.ClientReference)
	suite.Equal("guest@example.com", req.CustomerEmail)
	suite.Equal(provider.PurposeGuestPurchase, req.Metadata[provider.MetadataKeyPurpose])

	metaLines, err := provider.DecodeMetadataLines(req.Metadata[provider.MetadataKeyLines])
	suite.Require().NoError(err)
	suite.Require().Len(metaLines, 2)
	suite.Equal("SINGLE", metaLines[0].TicketTypeCode)
	suite.Equal(int64(12000), metaLines[0].Price)
}

func (suite *CheckoutServiceTestSuite) Test_GuestCheckout_RejectsRestrictedTickets() {
	ctx := context.Background()

	_, err := suite.checkoutService.GuestCheckout(ctx, services.GuestCheckoutCommand{
		Email: "guest@example.com",
		Items: []services.TicketSelection{{TicketTypeCode: "FREE", LineID: "L1"}},
	})
	suite.Require().Error(err)
	svcErr, ok := application.IsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(application.ErrCodeInvalidInput, svcErr.Code)
}

func (suite *CheckoutServiceTestSuite) Test_ProviderFailureSurfacesAsUnavailable() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	suite.mockProvider.createSessionFunc = func(ctx context.Context, req provider.CheckoutSessionRequest) (*provider.CheckoutSessionResponse, error) {
		return nil, &provider.ProviderError{Code: "internal_error", Message: "boom", StatusCode: 503}
	}

	_, err := suite.checkoutService.TopUpSession(ctx, services.TopUpSessionCommand{PassengerID: p.ID, Amount: 5000})
	suite.Require().Error(err)
	suite.True(domain.IsErrorCode(err, domain.ErrCodeProviderUnavailable))
}
