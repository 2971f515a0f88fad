package gateway

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// submitRequest is the wire shape of POST /api/rfq. Everything arrives as
// plain strings; the value constructors decide what is acceptable.
type submitRequest struct {
	RFQID          string        `json:"rfq_id,omitempty"`
	ClientLEI      string        `json:"client_lei"`
	Instrument     instrumentDTO `json:"instrument"`
	Notional       string        `json:"notional"`
	Currency       string        `json:"currency"`
	Side           string        `json:"side"`
	TradeDate      string        `json:"trade_date"`
	SettlementDate string        `json:"settlement_date"`
}

// instrumentDTO is the union of all variant fields, discriminated by kind.
// A swaption carries its embedded swap under "swap"; an outright swap uses
// the flat fields.
type instrumentDTO struct {
	Kind string `json:"kind"`

	// EQUITY
	UnderlyingISIN string `json:"underlying_isin,omitempty"`
	ExchangeMIC    string `json:"exchange_mic,omitempty"`

	// OPTION and FUTURES
	UnderlyingID string `json:"underlying_id,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`

	// OPTION
	Strike      string `json:"strike,omitempty"`
	OptionType  string `json:"option_type,omitempty"`
	OptionStyle string `json:"option_style,omitempty"`

	// FUTURES
	LastTradingDate string `json:"last_trading_date,omitempty"`
	ContractSize    string `json:"contract_size,omitempty"`

	// FX
	BaseCurrency   string `json:"base_currency,omitempty"`
	QuoteCurrency  string `json:"quote_currency,omitempty"`
	FXKind         string `json:"fx_kind,omitempty"`
	SettlementDate string `json:"settlement_date,omitempty"`
	ForwardRate    string `json:"forward_rate,omitempty"`
	FixingDate     string `json:"fixing_date,omitempty"`
	FixingSource   string `json:"fixing_source,omitempty"`

	// IR_SWAP (flat) and SWAPTION (nested)
	swapDTO
	Swap         *swapDTO `json:"swap,omitempty"`
	OptionExpiry string   `json:"option_expiry,omitempty"`

	// CDS
	ReferenceEntity string `json:"reference_entity,omitempty"`
	SpreadBps       string `json:"spread_bps,omitempty"`
	Restructuring   string `json:"restructuring,omitempty"`

	// Shared settlement mechanics
	SettlementType string `json:"settlement_type,omitempty"`
}

type swapDTO struct {
	FixedRate        string `json:"fixed_rate,omitempty"`
	FloatingIndex    string `json:"floating_index,omitempty"`
	DayCount         string `json:"day_count,omitempty"`
	PaymentFrequency string `json:"payment_frequency,omitempty"`
	TenorMonths      int    `json:"tenor_months,omitempty"`
	EffectiveDate    string `json:"effective_date,omitempty"`
	MaturityDate     string `json:"maturity_date,omitempty"`
}

// respondRequest is the wire shape of POST /api/rfq/{id}/response.
type respondRequest struct {
	Action        string `json:"action"`
	TermSheetHash string `json:"term_sheet_hash,omitempty"`
	Message       string `json:"message,omitempty"`
}

// toInput builds the validated domain request. An absent rfq_id gets a
// generated one; the id doubles as the workflow id, so clients that supply
// their own get idempotent resubmission for free.
func (r submitRequest) toInput(now time.Time) (rfq.Input, error) {
	rfqID := r.RFQID
	if rfqID == "" {
		rfqID = "RFQ-" + uuid.NewString()
	}
	id, err := values.NewNonEmptyString(rfqID)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("rfq_id: %w", err)
	}
	lei, err := values.NewLEI(r.ClientLEI)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("client_lei: %w", err)
	}
	detail, err := r.Instrument.toDetail()
	if err != nil {
		return rfq.Input{}, fmt.Errorf("instrument: %w", err)
	}
	notional, err := values.ParsePositiveDecimal(r.Notional)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("notional: %w", err)
	}
	currency, err := values.NewCurrency(r.Currency)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("currency: %w", err)
	}
	tradeDate, err := values.ParseDate(r.TradeDate)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("trade_date: %w", err)
	}
	settlementDate, err := values.ParseDate(r.SettlementDate)
	if err != nil {
		return rfq.Input{}, fmt.Errorf("settlement_date: %w", err)
	}
	ts, err := values.NewUTCTime(now)
	if err != nil {
		return rfq.Input{}, err
	}

	return rfq.NewInput(rfq.Input{
		RFQID:          id,
		ClientLEI:      lei,
		Detail:         detail,
		Notional:       notional,
		Currency:       currency,
		Side:           instrument.Side(r.Side),
		TradeDate:      tradeDate,
		SettlementDate: settlementDate,
		Timestamp:      ts,
	})
}

func (d instrumentDTO) toDetail() (instrument.Detail, error) {
	switch instrument.Kind(d.Kind) {
	case instrument.KindEquity:
		isin, err := values.NewISIN(d.UnderlyingISIN)
		if err != nil {
			return nil, err
		}
		return instrument.NewEquity(instrument.Equity{
			Underlying: isin,
			Exchange:   d.ExchangeMIC,
		})

	case instrument.KindOption:
		underlying, err := values.NewNonEmptyString(d.UnderlyingID)
		if err != nil {
			return nil, fmt.Errorf("underlying_id: %w", err)
		}
		strike, err := values.ParseNonNegativeDecimal(d.Strike)
		if err != nil {
			return nil, fmt.Errorf("strike: %w", err)
		}
		expiry, err := values.ParseDate(d.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("expiry_date: %w", err)
		}
		return instrument.NewOption(instrument.Option{
			Underlying: underlying,
			Strike:     strike,
			Expiry:     expiry,
			Type:       instrument.OptionType(d.OptionType),
			Style:      instrument.OptionStyle(d.OptionStyle),
			Settlement: instrument.SettlementType(d.SettlementType),
		})

	case instrument.KindFutures:
		underlying, err := values.NewNonEmptyString(d.UnderlyingID)
		if err != nil {
			return nil, fmt.Errorf("underlying_id: %w", err)
		}
		expiry, err := values.ParseDate(d.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("expiry_date: %w", err)
		}
		lastTrading, err := values.ParseDate(d.LastTradingDate)
		if err != nil {
			return nil, fmt.Errorf("last_trading_date: %w", err)
		}
		contractSize, err := values.ParsePositiveDecimal(d.ContractSize)
		if err != nil {
			return nil, fmt.Errorf("contract_size: %w", err)
		}
		return instrument.NewFutures(instrument.Futures{
			Underlying:   underlying,
			Expiry:       expiry,
			LastTrading:  lastTrading,
			ContractSize: contractSize,
			Settlement:   instrument.SettlementType(d.SettlementType),
		})

	case instrument.KindFX:
		base, err := values.NewCurrency(d.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("base_currency: %w", err)
		}
		quote, err := values.NewCurrency(d.QuoteCurrency)
		if err != nil {
			return nil, fmt.Errorf("quote_currency: %w", err)
		}
		pair, err := instrument.NewCurrencyPair(base, quote)
		if err != nil {
			return nil, err
		}
		settlement, err := values.ParseDate(d.SettlementDate)
		if err != nil {
			return nil, fmt.Errorf("settlement_date: %w", err)
		}
		fx := instrument.FX{
			Pair:           pair,
			SettlementDate: settlement,
			Settlement:     instrument.SettlementType(d.SettlementType),
			Type:           instrument.FXKind(d.FXKind),
			FixingSource:   d.FixingSource,
		}
		if d.ForwardRate != "" {
			rate, err := values.ParsePositiveDecimal(d.ForwardRate)
			if err != nil {
				return nil, fmt.Errorf("forward_rate: %w", err)
			}
			fx.ForwardRate = &rate
		}
		if d.FixingDate != "" {
			fixing, err := values.ParseDate(d.FixingDate)
			if err != nil {
				return nil, fmt.Errorf("fixing_date: %w", err)
			}
			fx.FixingDate = &fixing
		}
		return instrument.NewFX(fx)

	case instrument.KindIRSwap:
		swap, err := d.swapDTO.toSwap()
		if err != nil {
			return nil, err
		}
		return instrument.NewIRSwap(swap)

	case instrument.KindSwaption:
		if d.Swap == nil {
			return nil, fmt.Errorf("swaption requires an embedded swap")
		}
		swap, err := d.Swap.toSwap()
		if err != nil {
			return nil, fmt.Errorf("swap: %w", err)
		}
		optionExpiry, err := values.ParseDate(d.OptionExpiry)
		if err != nil {
			return nil, fmt.Errorf("option_expiry: %w", err)
		}
		return instrument.NewSwaption(instrument.Swaption{
			Swap:         swap,
			OptionExpiry: optionExpiry,
			Style:        instrument.OptionStyle(d.OptionStyle),
			Settlement:   instrument.SettlementType(d.SettlementType),
		})

	case instrument.KindCDS:
		entity, err := values.NewNonEmptyString(d.ReferenceEntity)
		if err != nil {
			return nil, fmt.Errorf("reference_entity: %w", err)
		}
		spread, err := values.ParseNonNegativeDecimal(d.SpreadBps)
		if err != nil {
			return nil, fmt.Errorf("spread_bps: %w", err)
		}
		effective, err := values.ParseDate(d.EffectiveDate)
		if err != nil {
			return nil, fmt.Errorf("effective_date: %w", err)
		}
		maturity, err := values.ParseDate(d.MaturityDate)
		if err != nil {
			return nil, fmt.Errorf("maturity_date: %w", err)
		}
		return instrument.NewCDS(instrument.CDS{
			ReferenceEntity: entity,
			SpreadBps:       spread,
			EffectiveDate:   effective,
			MaturityDate:    maturity,
			Restructuring:   instrument.RestructuringClause(d.Restructuring),
		})
	}
	return nil, fmt.Errorf("unknown instrument kind %q", d.Kind)
}

func (d swapDTO) toSwap() (instrument.IRSwap, error) {
	fixed, err := decimal.NewFromString(d.FixedRate)
	if err != nil {
		return instrument.IRSwap{}, fmt.Errorf("fixed_rate: %w", err)
	}
	index, err := values.NewNonEmptyString(d.FloatingIndex)
	if err != nil {
		return instrument.IRSwap{}, fmt.Errorf("floating_index: %w", err)
	}
	effective, err := values.ParseDate(d.EffectiveDate)
	if err != nil {
		return instrument.IRSwap{}, fmt.Errorf("effective_date: %w", err)
	}
	maturity, err := values.ParseDate(d.MaturityDate)
	if err != nil {
		return instrument.IRSwap{}, fmt.Errorf("maturity_date: %w", err)
	}
	return instrument.NewIRSwap(instrument.IRSwap{
		FixedRate:     fixed,
		FloatingIndex: index,
		DayCount:      instrument.DayCount(d.DayCount),
		Frequency:     instrument.PaymentFrequency(d.PaymentFrequency),
		TenorMonths:   d.TenorMonths,
		EffectiveDate: effective,
		MaturityDate:  maturity,
	})
}
