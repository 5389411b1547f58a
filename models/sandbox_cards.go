package models

// SandboxCard is a card number the sandbox accepts for test charges.
type SandboxCard struct {
	Number   string
	CardType string
}

// SandboxCards lists every number the sandbox treats as valid. Charges with
// any other number are declined.
var SandboxCards = []SandboxCard{
	{Number: "4111111111111111", CardType: CardTypeVisa},
	{Number: "4005519200000004", CardType: CardTypeVisa},
	{Number: "4009348888881881", CardType: CardTypeVisa},
	{Number: "4012000033330026", CardType: CardTypeVisa},
	{Number: "4012000077777777", CardType: CardTypeVisa},
	{Number: "4012888888881881", CardType: CardTypeVisa},
	{Number: "4217651111111119", CardType: CardTypeVisa},
	{Number: "4500600000000061", CardType: CardTypeVisa},
	{Number: "5555555555554444", CardType: CardTypeMasterCard},
	{Number: "378282246310005", CardType: CardTypeAmericanExpress},
	{Number: "371449635398431", CardType: CardTypeAmericanExpress},
	{Number: "6011111111111117", CardType: CardTypeDiscover},
	{Number: "3530111333300000", CardType: CardTypeJCB},
}

// ValidCreditCards is the bare number list of SandboxCards.
var ValidCreditCards = func() []string {
	out := make([]string, 0, len(SandboxCards))
	for _, c := range SandboxCards {
		out = append(out, c.Number)
	}
	return out
}()

var validCardSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SandboxCards))
	for _, c := range SandboxCards {
		m[c.Number] = struct{}{}
	}
	return m
}()

// IsValidCreditCard reports whether number is one of the sandbox numbers.
func IsValidCreditCard(number string) bool {
	_, ok := validCardSet[number]
	return ok
}
