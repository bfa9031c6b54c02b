package postgres

import (
	"time"

	"github.com/metropass/settlement-engine/internal/domain"
)

func toDomainWallet(m walletModel) *domain.Wallet {
	return &domain.Wallet{
		PassengerID: m.PassengerID,
		Balance:     m.Balance,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainCartItem(m cartItemModel) domain.CartItem {
	return domain.CartItem{
		ID:             m.ID,
		PassengerID:    m.PassengerID,
		LineID:         m.LineID,
		StartStationID: m.StartStationID,
		EndStationID:   m.EndStationID,
		TicketTypeCode: m.TicketTypeCode,
		CreatedAt:      m.CreatedAt,
	}
}

func toDomainTicketType(m ticketTypeModel) domain.TicketType {
	return domain.TicketType{
		Code:        m.Code,
		DisplayName: m.DisplayName,
		Price:       m.Price,
		Validity:    time.Duration(m.ValiditySecs) * time.Second,
		Rule:        domain.EligibilityRule(m.Rule),
		Active:      m.Active,
	}
}

func toDomainInvoice(m invoiceModel) *domain.Invoice {
	inv := &domain.Invoice{
		ID:          m.ID,
		Email:       m.Email,
		TotalPrice:  m.TotalPrice,
		PurchasedAt: m.PurchasedAt,
	}
	if m.PassengerID != nil {
		inv.PassengerID = *m.PassengerID
	}
	return inv
}

func toDomainInvoiceItem(m invoiceItemModel) domain.InvoiceItem {
	return domain.InvoiceItem{
		ID:             m.ID,
		InvoiceID:      m.InvoiceID,
		TicketTypeCode: m.TicketTypeCode,
		Price:          m.Price,
		LineID:         m.LineID,
		LineName:       m.LineName,
		StartStation:   m.StartStation,
		EndStation:     m.EndStation,
		Duration:       time.Duration(m.DurationSecs) * time.Second,
		Status:         domain.ItemStatus(m.Status),
		ActivatedAt:    m.ActivatedAt,
		ExpiredAt:      m.ExpiredAt,
	}
}

func toDomainPassenger(m passengerModel) *domain.Passenger {
	return &domain.Passenger{
		ID:              m.ID,
		Email:           m.Email,
		DateOfBirth:     m.DateOfBirth,
		HasDisability:   m.HasDisability,
		IsRevolutionary: m.IsRevolutionary,
		StudentID:       m.StudentID,
		CreatedAt:       m.CreatedAt,
	}
}
