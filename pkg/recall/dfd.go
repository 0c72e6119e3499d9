package recall

import "rrs/pkg/nvfix"

// TagEvent is the custom tag carrying the compensating-request event
// token on the DFD topic.
const TagEvent = "5001"

// DfdEvent is the done-for-day event token.
const DfdEvent = "DFD"

// BuildDfdRequest renders the compensating done-for-day request for a
// rebuilt order as an NVFIX message.
func BuildDfdRequest(o *Order, event string) string {
	if event == "" {
		event = DfdEvent
	}

	fields := []nvfix.Field{{Tag: TagEvent, Value: event}}
	fields = appendField(fields, TagOrderID, o.OrderID)
	fields = appendField(fields, TagOrdStatus, string(StateDoneOfDay))
	fields = appendQty(fields, TagOrderQty, o.OrdQty)
	if o.FillRequest != nil {
		fields = appendQty(fields, TagCumQty, o.FillRequest.CumQty)
		fields = appendPrice(fields, TagAvgPx, o.FillRequest.AvgPrice)
	}
	fields = appendField(fields, TagSymbol, o.Symbol)
	fields = appendField(fields, TagAccount, o.Account)
	fields = appendField(fields, TagCurrency, o.Currency)
	fields = appendField(fields, TagSide, o.Side)

	return nvfix.Join(fields)
}
