package recall

import (
	"fmt"
	"strconv"
	"time"

	"rrs/pkg/nvfix"
	"rrs/pkg/xlog"

	"github.com/shopspring/decimal"
)

var logger = xlog.GetLogger()

// FIX tag numbers used on the OMS streams.
const (
	TagAccount      = "1"
	TagAvgPx        = "6"
	TagClOrdID      = "11"
	TagCumQty       = "14"
	TagCurrency     = "15"
	TagExecID       = "17"
	TagLastPx       = "31"
	TagLastQty      = "32"
	TagMsgType      = "35"
	TagOrderID      = "37"
	TagOrderQty     = "38"
	TagOrdStatus    = "39"
	TagOrigClOrdID  = "41"
	TagPrice        = "44"
	TagSendingTime  = "52"
	TagSide         = "54"
	TagSymbol       = "55"
	TagTransactTime = "60"
	TagExecType     = "150"
	TagLeavesQty    = "151"
)

// Message types carried in tag 35.
const (
	MsgTypeOrder      = "D"
	MsgTypeCancel     = "F"
	MsgTypeReplace    = "G"
	MsgTypeExecReport = "8"
)

const fixTimeLayout = "20060102-15:04:05.000"

// orderSetters routes order-message tags into the Order. Tag 35 is
// consumed by the dispatcher and mapped to a no-op here so it does not
// show up as unknown.
var orderSetters = map[string]func(o *Order, v string) error{
	TagMsgType:     func(o *Order, v string) error { return nil },
	TagOrderID:     func(o *Order, v string) error { o.OrderID = v; return nil },
	TagClOrdID:     func(o *Order, v string) error { o.ClOrdID = v; return nil },
	TagOrigClOrdID: func(o *Order, v string) error { o.OrigClOrdID = v; return nil },
	TagOrdStatus:   func(o *Order, v string) error { o.CurrentState = State(v); return nil },
	TagSymbol:      func(o *Order, v string) error { o.Symbol = v; return nil },
	TagAccount:     func(o *Order, v string) error { o.Account = v; return nil },
	TagCurrency:    func(o *Order, v string) error { o.Currency = v; return nil },
	TagSide:        func(o *Order, v string) error { o.Side = v; return nil },
	TagOrderQty: func(o *Order, v string) (err error) {
		o.OrdQty, err = parseQty(v)
		return
	},
	TagPrice: func(o *Order, v string) (err error) {
		o.Price, err = parsePrice(v)
		return
	},
	TagTransactTime: func(o *Order, v string) (err error) {
		o.TransactTime, err = ParseFixTime(v)
		return
	},
}

var execSetters = map[string]func(r *ExecutionReport, v string) error{
	TagMsgType:     func(r *ExecutionReport, v string) error { return nil },
	TagExecID:      func(r *ExecutionReport, v string) error { r.ExecID = v; return nil },
	TagExecType:    func(r *ExecutionReport, v string) error { r.ExecType = v; return nil },
	TagClOrdID:     func(r *ExecutionReport, v string) error { r.ClOrdID = v; return nil },
	TagOrigClOrdID: func(r *ExecutionReport, v string) error { r.OrigClOrdID = v; return nil },
	TagOrderID:     func(r *ExecutionReport, v string) error { r.OrderID = v; return nil },
	TagOrdStatus:   func(r *ExecutionReport, v string) error { r.OrderState = State(v); return nil },
	TagSymbol:      func(r *ExecutionReport, v string) error { r.Symbol = v; return nil },
	TagCurrency:    func(r *ExecutionReport, v string) error { r.Currency = v; return nil },
	TagSide:        func(r *ExecutionReport, v string) error { r.Side = v; return nil },
	TagLastQty: func(r *ExecutionReport, v string) (err error) {
		r.LastQty, err = parseQty(v)
		return
	},
	TagCumQty: func(r *ExecutionReport, v string) (err error) {
		r.CumQty, err = parseQty(v)
		return
	},
	TagLeavesQty: func(r *ExecutionReport, v string) (err error) {
		r.LeavesQty, err = parseQty(v)
		return
	},
	TagLastPx: func(r *ExecutionReport, v string) (err error) {
		r.LastPrice, err = parsePrice(v)
		return
	},
	TagAvgPx: func(r *ExecutionReport, v string) (err error) {
		r.AvgPrice, err = parsePrice(v)
		return
	},
	TagTransactTime: func(r *ExecutionReport, v string) (err error) {
		r.TransactTime, err = ParseFixTime(v)
		return
	},
	TagSendingTime: func(r *ExecutionReport, v string) (err error) {
		r.SendingTime, err = ParseFixTime(v)
		return
	},
}

// DecodeOmsPayload decodes an NVFIX message from either OMS stream,
// dispatching on tag 35: execution reports on "8", order shapes on
// "D"/"G"/"F".
func DecodeOmsPayload(raw string) (payload interface{}, err error) {
	fields, err := nvfix.Split(raw)
	if err != nil {
		return
	}

	mt, _ := nvfix.Get(fields, TagMsgType)
	switch mt {
	case MsgTypeExecReport:
		return decodeExecFields(raw, fields)
	case MsgTypeOrder, MsgTypeReplace, MsgTypeCancel:
		return decodeOrderFields(raw, fields, mt)
	default:
		err = &nvfix.ParseError{Raw: raw, Err: fmt.Errorf("unsupported msg type %q", mt)}
		return
	}
}

// DecodeOrder parses an NVFIX order message. Replace and cancel shapes
// additionally materialise the amend payload from their base tags.
func DecodeOrder(raw string) (o *Order, err error) {
	fields, err := nvfix.Split(raw)
	if err != nil {
		return
	}

	mt, _ := nvfix.Get(fields, TagMsgType)
	return decodeOrderFields(raw, fields, mt)
}

// DecodeExecutionReport parses an NVFIX execution report.
func DecodeExecutionReport(raw string) (r *ExecutionReport, err error) {
	fields, err := nvfix.Split(raw)
	if err != nil {
		return
	}

	return decodeExecFields(raw, fields)
}

func decodeOrderFields(raw string, fields []nvfix.Field, msgType string) (o *Order, err error) {
	o = &Order{}
	for _, f := range fields {
		set, ok := orderSetters[f.Tag]
		if !ok {
			logger.Warningf("nvfix order: unknown tag %s=%s skipped", f.Tag, f.Value)
			continue
		}
		err = set(o, f.Value)
		if err != nil {
			err = &nvfix.ParseError{Raw: raw, Err: err}
			return nil, err
		}
	}

	if msgType == MsgTypeReplace || msgType == MsgTypeCancel {
		o.AmendRequest = &AmendRequest{
			OrderQty:    o.OrdQty,
			Price:       o.Price,
			ClOrdID:     o.ClOrdID,
			OrigClOrdID: o.OrigClOrdID,
		}
	}

	return
}

func decodeExecFields(raw string, fields []nvfix.Field) (r *ExecutionReport, err error) {
	r = &ExecutionReport{}
	for _, f := range fields {
		set, ok := execSetters[f.Tag]
		if !ok {
			logger.Warningf("nvfix exec: unknown tag %s=%s skipped", f.Tag, f.Value)
			continue
		}
		err = set(r, f.Value)
		if err != nil {
			err = &nvfix.ParseError{Raw: raw, Err: err}
			return nil, err
		}
	}

	return
}

// NVFIX renders the order as an order message.
func (o *Order) NVFIX() string {
	fields := []nvfix.Field{{Tag: TagMsgType, Value: MsgTypeOrder}}
	fields = appendField(fields, TagOrderID, o.OrderID)
	fields = appendField(fields, TagClOrdID, o.ClOrdID)
	fields = appendField(fields, TagOrigClOrdID, o.OrigClOrdID)
	fields = appendField(fields, TagOrdStatus, string(o.CurrentState))
	fields = appendQty(fields, TagOrderQty, o.OrdQty)
	fields = appendPrice(fields, TagPrice, o.Price)
	fields = appendField(fields, TagSymbol, o.Symbol)
	fields = appendField(fields, TagAccount, o.Account)
	fields = appendField(fields, TagCurrency, o.Currency)
	fields = appendField(fields, TagSide, o.Side)
	fields = appendTime(fields, TagTransactTime, o.TransactTime)
	return nvfix.Join(fields)
}

// NVFIX renders the report as an execution report message.
func (r *ExecutionReport) NVFIX() string {
	fields := []nvfix.Field{{Tag: TagMsgType, Value: MsgTypeExecReport}}
	fields = appendField(fields, TagExecID, r.ExecID)
	fields = appendField(fields, TagExecType, r.ExecType)
	fields = appendField(fields, TagClOrdID, r.ClOrdID)
	fields = appendField(fields, TagOrigClOrdID, r.OrigClOrdID)
	fields = appendField(fields, TagOrderID, r.OrderID)
	fields = appendField(fields, TagOrdStatus, string(r.OrderState))
	fields = appendQty(fields, TagLastQty, r.LastQty)
	fields = appendQty(fields, TagCumQty, r.CumQty)
	fields = appendQty(fields, TagLeavesQty, r.LeavesQty)
	fields = appendPrice(fields, TagLastPx, r.LastPrice)
	fields = appendPrice(fields, TagAvgPx, r.AvgPrice)
	fields = appendField(fields, TagSymbol, r.Symbol)
	fields = appendField(fields, TagCurrency, r.Currency)
	fields = appendField(fields, TagSide, r.Side)
	fields = appendTime(fields, TagTransactTime, r.TransactTime)
	fields = appendTime(fields, TagSendingTime, r.SendingTime)
	return nvfix.Join(fields)
}

// ParseFixTime parses a FIX UTC timestamp, with or without milliseconds.
func ParseFixTime(v string) (t time.Time, err error) {
	t, err = time.Parse(fixTimeLayout, v)
	if err == nil {
		return
	}

	t, err = time.Parse("20060102-15:04:05", v)
	return
}

// FormatFixTime renders a FIX UTC timestamp with milliseconds.
func FormatFixTime(t time.Time) string {
	return t.UTC().Format(fixTimeLayout)
}

func parseQty(v string) (q int64, err error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return
	}

	q = d.IntPart()
	return
}

func parsePrice(v string) (p float64, err error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return
	}

	p, _ = d.Float64()
	return
}

func appendField(fields []nvfix.Field, tag, v string) []nvfix.Field {
	if v == "" {
		return fields
	}
	return append(fields, nvfix.Field{Tag: tag, Value: v})
}

func appendQty(fields []nvfix.Field, tag string, q int64) []nvfix.Field {
	if q == 0 {
		return fields
	}
	return append(fields, nvfix.Field{Tag: tag, Value: strconv.FormatInt(q, 10)})
}

func appendPrice(fields []nvfix.Field, tag string, p float64) []nvfix.Field {
	if p == 0 {
		return fields
	}
	return append(fields, nvfix.Field{Tag: tag, Value: decimal.NewFromFloat(p).String()})
}

func appendTime(fields []nvfix.Field, tag string, t time.Time) []nvfix.Field {
	if t.IsZero() {
		return fields
	}
	return append(fields, nvfix.Field{Tag: tag, Value: FormatFixTime(t)})
}
