package handlers

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/robertjwhitney/fake-braintree/models"
)

// The types in this file pin the gateway's XML schema. Element names, their
// nesting and the type="..." attributes follow what the gateway client
// libraries parse; change them only against the real API.

type xmlTime struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

func datetime(t time.Time) *xmlTime {
	if t.IsZero() {
		return nil
	}
	return &xmlTime{Type: "datetime", Value: t.UTC().Format(time.RFC3339)}
}

func date(t time.Time) *xmlTime {
	if t.IsZero() {
		return nil
	}
	return &xmlTime{Type: "date", Value: t.Format(models.DateLayout)}
}

type xmlArray[T any] struct {
	Type  string `xml:"type,attr"`
	Items []T
}

func array[T any](items []T) xmlArray[T] {
	return xmlArray[T]{Type: "array", Items: items}
}

type xmlItem struct {
	XMLName xml.Name `xml:"item"`
	Value   string   `xml:",chardata"`
}

type xmlBool struct {
	Type  string `xml:"type,attr"`
	Value bool   `xml:",chardata"`
}

func boolean(v bool) xmlBool { return xmlBool{Type: "boolean", Value: v} }

type xmlInt struct {
	Type  string `xml:"type,attr"`
	Value int    `xml:",chardata"`
}

func integer(v int) xmlInt { return xmlInt{Type: "integer", Value: v} }

type xmlStatusEvent struct {
	XMLName           xml.Name `xml:"status-event"`
	Timestamp         *xmlTime `xml:"timestamp"`
	Status            string   `xml:"status"`
	Amount            string   `xml:"amount"`
	User              string   `xml:"user"`
	TransactionSource string   `xml:"transaction-source"`
}

type xmlCreditCard struct {
	XMLName         xml.Name `xml:"credit-card"`
	Token           string   `xml:"token,omitempty"`
	CustomerID      string   `xml:"customer-id,omitempty"`
	BIN             string   `xml:"bin"`
	Last4           string   `xml:"last-4"`
	CardType        string   `xml:"card-type"`
	ExpirationMonth string   `xml:"expiration-month"`
	ExpirationYear  string   `xml:"expiration-year"`
	ExpirationDate  string   `xml:"expiration-date"`
	CardholderName  string   `xml:"cardholder-name"`
	MaskedNumber    string   `xml:"masked-number"`
	Default         xmlBool  `xml:"default"`
	CreatedAt       *xmlTime `xml:"created-at"`
	UpdatedAt       *xmlTime `xml:"updated-at"`
}

func toXMLCreditCard(c models.CreditCard) xmlCreditCard {
	return xmlCreditCard{
		Token:           c.Token,
		CustomerID:      c.CustomerID,
		BIN:             c.BIN,
		Last4:           c.Last4,
		CardType:        c.CardType,
		ExpirationMonth: c.ExpirationMonth(),
		ExpirationYear:  c.ExpirationYear(),
		ExpirationDate:  c.ExpirationDate,
		CardholderName:  c.CardholderName,
		MaskedNumber:    c.MaskedNumber,
		Default:         boolean(c.Default),
		CreatedAt:       datetime(c.CreatedAt),
		UpdatedAt:       datetime(c.UpdatedAt),
	}
}

type xmlTransaction struct {
	XMLName               xml.Name                 `xml:"transaction"`
	ID                    string                   `xml:"id"`
	Status                string                   `xml:"status"`
	Type                  string                   `xml:"type"`
	CurrencyISOCode       string                   `xml:"currency-iso-code"`
	Amount                string                   `xml:"amount"`
	MerchantAccountID     string                   `xml:"merchant-account-id,omitempty"`
	OrderID               string                   `xml:"order-id,omitempty"`
	CustomerID            string                   `xml:"customer-id,omitempty"`
	SubscriptionID        string                   `xml:"subscription-id,omitempty"`
	RefundedTransactionID string                   `xml:"refunded-transaction-id,omitempty"`
	RefundIDs             xmlArray[xmlItem]        `xml:"refund-ids"`
	ProcessorResponseCode string                   `xml:"processor-response-code"`
	ProcessorResponseText string                   `xml:"processor-response-text"`
	CreatedAt             *xmlTime                 `xml:"created-at"`
	UpdatedAt             *xmlTime                 `xml:"updated-at"`
	CreditCard            xmlCreditCard            `xml:"credit-card"`
	StatusHistory         xmlArray[xmlStatusEvent] `xml:"status-history"`
}

func toXMLTransaction(t models.Transaction) xmlTransaction {
	refunds := make([]xmlItem, 0, len(t.RefundIDs))
	for _, id := range t.RefundIDs {
		refunds = append(refunds, xmlItem{Value: id})
	}
	events := make([]xmlStatusEvent, 0, len(t.StatusHistory))
	for _, e := range t.StatusHistory {
		events = append(events, xmlStatusEvent{
			Timestamp:         datetime(e.Timestamp),
			Status:            string(e.Status),
			Amount:            e.Amount,
			User:              e.User,
			TransactionSource: e.TransactionSource,
		})
	}
	return xmlTransaction{
		ID:                    t.ID,
		Status:                string(t.Status),
		Type:                  string(t.Type),
		CurrencyISOCode:       t.CurrencyISOCode,
		Amount:                t.Amount,
		MerchantAccountID:     t.MerchantAccountID,
		OrderID:               t.OrderID,
		CustomerID:            t.CustomerID,
		SubscriptionID:        t.SubscriptionID,
		RefundedTransactionID: t.RefundedTransactionID,
		RefundIDs:             array(refunds),
		ProcessorResponseCode: t.ProcessorResponseCode,
		ProcessorResponseText: t.ProcessorResponseText,
		CreatedAt:             datetime(t.CreatedAt),
		UpdatedAt:             datetime(t.UpdatedAt),
		CreditCard:            toXMLCreditCard(t.CreditCard),
		StatusHistory:         array(events),
	}
}

type xmlCustomer struct {
	XMLName     xml.Name                `xml:"customer"`
	ID          string                  `xml:"id"`
	FirstName   string                  `xml:"first-name"`
	LastName    string                  `xml:"last-name"`
	Company     string                  `xml:"company"`
	Email       string                  `xml:"email"`
	Phone       string                  `xml:"phone"`
	CreatedAt   *xmlTime                `xml:"created-at"`
	UpdatedAt   *xmlTime                `xml:"updated-at"`
	CreditCards xmlArray[xmlCreditCard] `xml:"credit-cards"`
}

func toXMLCustomer(c models.Customer) xmlCustomer {
	cards := make([]xmlCreditCard, 0, len(c.CreditCards))
	for _, card := range c.CreditCards {
		cards = append(cards, toXMLCreditCard(card))
	}
	return xmlCustomer{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Company:     c.Company,
		Email:       c.Email,
		Phone:       c.Phone,
		CreatedAt:   datetime(c.CreatedAt),
		UpdatedAt:   datetime(c.UpdatedAt),
		CreditCards: array(cards),
	}
}

type xmlSubscription struct {
	XMLName                xml.Name                 `xml:"subscription"`
	ID                     string                   `xml:"id"`
	PlanID                 string                   `xml:"plan-id"`
	PaymentMethodToken     string                   `xml:"payment-method-token"`
	Price                  string                   `xml:"price"`
	Status                 string                   `xml:"status"`
	BillingDayOfMonth      xmlInt                   `xml:"billing-day-of-month"`
	BillingPeriodStartDate *xmlTime                 `xml:"billing-period-start-date"`
	BillingPeriodEndDate   *xmlTime                 `xml:"billing-period-end-date"`
	FirstBillingDate       *xmlTime                 `xml:"first-billing-date"`
	NextBillingDate        *xmlTime                 `xml:"next-billing-date"`
	CurrentBillingCycle    xmlInt                   `xml:"current-billing-cycle"`
	NumberOfBillingCycles  *xmlInt                  `xml:"number-of-billing-cycles"`
	NeverExpires           xmlBool                  `xml:"never-expires"`
	FailureCount           xmlInt                   `xml:"failure-count"`
	CreatedAt              *xmlTime                 `xml:"created-at"`
	UpdatedAt              *xmlTime                 `xml:"updated-at"`
	Transactions           xmlArray[xmlTransaction] `xml:"transactions"`
}

func toXMLSubscription(s models.Subscription) xmlSubscription {
	txs := make([]xmlTransaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		txs = append(txs, toXMLTransaction(t))
	}
	var cycles *xmlInt
	if s.NumberOfBillingCycles > 0 {
		n := integer(s.NumberOfBillingCycles)
		cycles = &n
	}
	return xmlSubscription{
		ID:                     s.ID,
		PlanID:                 s.PlanID,
		PaymentMethodToken:     s.PaymentMethodToken,
		Price:                  s.Price,
		Status:                 string(s.Status),
		BillingDayOfMonth:      integer(s.BillingDayOfMonth),
		BillingPeriodStartDate: date(s.BillingPeriodStartDate),
		BillingPeriodEndDate:   date(s.BillingPeriodEndDate),
		FirstBillingDate:       date(s.FirstBillingDate),
		NextBillingDate:        date(s.NextBillingDate),
		CurrentBillingCycle:    integer(s.CurrentBillingCycle),
		NumberOfBillingCycles:  cycles,
		NeverExpires:           boolean(s.NeverExpires),
		FailureCount:           integer(s.FailureCount),
		CreatedAt:              datetime(s.CreatedAt),
		UpdatedAt:              datetime(s.UpdatedAt),
		Transactions:           array(txs),
	}
}

type xmlValidationError struct {
	XMLName   xml.Name `xml:"error"`
	Code      string   `xml:"code"`
	Attribute string   `xml:"attribute"`
	Message   string   `xml:"message"`
}

type xmlErrors struct {
	Errors xmlArray[xmlValidationError] `xml:"errors"`
}

type xmlVerification struct {
	Status                string `xml:"status"`
	ProcessorResponseCode string `xml:"processor-response-code"`
	ProcessorResponseText string `xml:"processor-response-text"`
}

// xmlParams echoes request params as child elements in key order.
type xmlParams map[string]string

func (p xmlParams) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := e.EncodeElement(p[k], xml.StartElement{Name: xml.Name{Local: k}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

type xmlErrorResponse struct {
	XMLName      xml.Name         `xml:"api-error-response"`
	Errors       xmlErrors        `xml:"errors"`
	Params       xmlParams        `xml:"params"`
	Message      string           `xml:"message"`
	Verification *xmlVerification `xml:"verification"`
	Transaction  *xmlTransaction  `xml:"transaction"`
}

func toXMLErrorResponse(r models.ErrorResponse) xmlErrorResponse {
	errs := make([]xmlValidationError, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, xmlValidationError{Code: e.Code, Attribute: e.Attribute, Message: e.Message})
	}
	out := xmlErrorResponse{
		Errors:  xmlErrors{Errors: array(errs)},
		Params:  xmlParams(r.Params),
		Message: r.Message,
	}
	if r.Params == nil {
		out.Params = xmlParams{}
	}
	if v := r.Verification; v != nil {
		out.Verification = &xmlVerification{
			Status:                string(v.Status),
			ProcessorResponseCode: v.ProcessorResponseCode,
			ProcessorResponseText: v.ProcessorResponseText,
		}
	}
	if r.Transaction != nil {
		t := toXMLTransaction(*r.Transaction)
		out.Transaction = &t
	}
	return out
}

// Request bodies. Root element names are not checked; clients differ in what
// they send (credit-card vs payment-method).

type creditCardRequest struct {
	Token           string `xml:"token"`
	CustomerID      string `xml:"customer-id"`
	Number          string `xml:"number"`
	ExpirationDate  string `xml:"expiration-date"`
	ExpirationMonth string `xml:"expiration-month"`
	ExpirationYear  string `xml:"expiration-year"`
	CVV             string `xml:"cvv"`
	CardholderName  string `xml:"cardholder-name"`
}

func (c creditCardRequest) expirationDate() string {
	if c.ExpirationDate != "" {
		return c.ExpirationDate
	}
	if c.ExpirationMonth != "" && c.ExpirationYear != "" {
		return c.ExpirationMonth + "/" + c.ExpirationYear
	}
	return ""
}

func (c creditCardRequest) model() models.CreditCard {
	card := models.CreditCard{
		Token:          c.Token,
		CustomerID:     c.CustomerID,
		ExpirationDate: c.expirationDate(),
		CardholderName: c.CardholderName,
	}
	card.SetNumber(c.Number)
	return card
}

type transactionRequest struct {
	Type               string            `xml:"type"`
	Amount             string            `xml:"amount"`
	PaymentMethodToken string            `xml:"payment-method-token"`
	CustomerID         string            `xml:"customer-id"`
	OrderID            string            `xml:"order-id"`
	MerchantAccountID  string            `xml:"merchant-account-id"`
	CreditCard         creditCardRequest `xml:"credit-card"`
	Options            struct {
		SubmitForSettlement bool `xml:"submit-for-settlement"`
		StoreInVault        bool `xml:"store-in-vault"`
	} `xml:"options"`
}

type customerRequest struct {
	ID         string             `xml:"id"`
	FirstName  string             `xml:"first-name"`
	LastName   string             `xml:"last-name"`
	Company    string             `xml:"company"`
	Email      string             `xml:"email"`
	Phone      string             `xml:"phone"`
	CreditCard *creditCardRequest `xml:"credit-card"`
}

type subscriptionRequest struct {
	ID                    string `xml:"id"`
	PlanID                string `xml:"plan-id"`
	PaymentMethodToken    string `xml:"payment-method-token"`
	Price                 string `xml:"price"`
	NumberOfBillingCycles int    `xml:"number-of-billing-cycles"`
	FirstBillingDate      string `xml:"first-billing-date"`
}
