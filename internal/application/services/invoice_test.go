package services_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/metropass/settlement-engine/internal/application/services"
	"github.com/metropass/settlement-engine/internal/application/services/testhelpers"
	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	testDB         *testhelpers.TestDatabase
	invoiceService *services.InvoiceService
	receiptService *services.ReceiptService
}

func TestInvoiceServiceSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	invoiceRepo := postgres.NewInvoiceRepository(suite.testDB.DB)
	suite.invoiceService = services.NewInvoiceService(
		invoiceRepo,
		postgres.NewPassengerRepository(suite.testDB.DB),
		postgres.NewTransactionCoordinator(suite.testDB.DB),
		slog.Default(),
	)
	suite.receiptService = services.NewReceiptService(invoiceRepo, slog.Default())
}

func (suite *InvoiceServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.testDB.CleanTables(suite.T())
}

func sampleLines() []domain.InvoiceLine {
	return []domain.InvoiceLine{
		{TicketTypeCode: "SINGLE", Price: 12000, LineID: "L1", LineName: "Line 1", StartStation: "ST-01", EndStation: "ST-05", Duration: 24 * time.Hour},
		{TicketTypeCode: "DAILY", Price: 40000, LineID: "L2", LineName: "Line 2", StartStation: "ST-02", EndStation: "ST-08", Duration: 24 * time.Hour},
	}
}

func (suite *InvoiceServiceTestSuite) Test_Create_TotalsAndItems() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	invoice, err := suite.invoiceService.Create(ctx, p.ID, "", sampleLines())
	suite.Require().NoError(err)

	suite.Equal(int64(52000), invoice.TotalPrice)
	suite.Equal(p.Email, invoice.Email)
	suite.Require().Len(invoice.Items, 2)
	for _, item := range invoice.Items {
		suite.Equal(domain.StatusIssued, item.Status)
		suite.Nil(item.ActivatedAt)
	}

	stored, err := suite.invoiceService.Get(ctx, invoice.ID)
	suite.Require().NoError(err)
	suite.Equal(invoice.TotalPrice, stored.TotalPrice)
	suite.Len(stored.Items, 2)
}

func (suite *InvoiceServiceTestSuite) Test_Create_GuestInvoiceKeyedByEmail() {
	ctx := context.Background()

	invoice, err := suite.invoiceService.Create(ctx, "", "guest@example.com", sampleLines()[:1])
	suite.Require().NoError(err)
	suite.Equal("", invoice.PassengerID)

	byEmail, err := suite.invoiceService.ListByEmail(ctx, "guest@example.com")
	suite.Require().NoError(err)
	suite.Require().Len(byEmail, 1)
	suite.Equal(invoice.ID, byEmail[0].ID)
}

func (suite *InvoiceServiceTestSuite) Test_Create_UnknownPassenger() {
	ctx := context.Background()

	_, err := suite.invoiceService.Create(ctx, "no-such-passenger", "", sampleLines())
	suite.ErrorIs(err, postgres.ErrPassengerNotFound)
}

func (suite *InvoiceServiceTestSuite) Test_Get_Unknown() {
	ctx := context.Background()

	_, err := suite.invoiceService.Get(ctx, "no-such-invoice")
	suite.ErrorIs(err, postgres.ErrInvoiceNotFound)
}

func (suite *InvoiceServiceTestSuite) Test_ListByPassenger_NewestFirst() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)

	first, err := suite.invoiceService.Create(ctx, p.ID, "", sampleLines()[:1])
	suite.Require().NoError(err)
	time.Sleep(10 * time.Millisecond)
	second, err := suite.invoiceService.Create(ctx, p.ID, "", sampleLines()[1:])
	suite.Require().NoError(err)

	invoices, err := suite.invoiceService.ListByPassenger(ctx, p.ID)
	suite.Require().NoError(err)
	suite.Require().Len(invoices, 2)
	suite.Equal(second.ID, invoices[0].ID)
	suite.Equal(first.ID, invoices[1].ID)
}

func (suite *InvoiceServiceTestSuite) Test_Receipt_RendersPDF() {
	ctx := context.Background()
	t := suite.T()

	p := testhelpers.CreatePassenger(t, ctx, suite.testDB.DB)
	invoice, err := suite.invoiceService.Create(ctx, p.ID, "", sampleLines())
	suite.Require().NoError(err)

	pdf, err := suite.receiptService.Render(ctx, invoice.ID)
	suite.Require().NoError(err)
	suite.True(bytes.HasPrefix(pdf, []byte("%PDF")))
	suite.Greater(len(pdf), 500)
}

func (suite *InvoiceServiceTestSuite) Test_Receipt_UnknownInvoice() {
	ctx := context.Background()

	_, err := suite.receiptService.Render(ctx, "no-such-invoice")
	suite.ErrorIs(err, postgres.ErrInvoiceNotFound)
}
