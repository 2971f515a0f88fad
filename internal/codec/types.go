package codec

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// DefaultRegistry returns the allow-list of every record the RFQ system puts
// on the wire: identifiers and money, the instrument variants, the mapped
// product, pricing artifacts and the workflow records. Nothing outside this
// list can be named in a payload.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.Register("Money", values.Money{}, encodeMoney, decodeMoney)
	reg.Register("CurrencyPair", instrument.CurrencyPair{}, encodeCurrencyPair, decodeCurrencyPair)

	reg.Register("EquityDetail", instrument.Equity{}, encodeEquity, decodeEquity)
	reg.Register("OptionDetail", instrument.Option{}, encodeOption, decodeOption)
	reg.Register("FuturesDetail", instrument.Futures{}, encodeFutures, decodeFutures)
	reg.Register("FXDetail", instrument.FX{}, encodeFX, decodeFX)
	reg.Register("IRSwapDetail", instrument.IRSwap{}, encodeIRSwap, decodeIRSwap)
	reg.Register("SwaptionDetail", instrument.Swaption{}, encodeSwaption, decodeSwaption)
	reg.Register("CDSDetail", instrument.CDS{}, encodeCDS, decodeCDS)

	reg.Register("Economics", product.Economics{}, encodeEconomics, decodeEconomics)
	reg.Register("Payout", product.Payout{}, encodePayout, decodePayout)
	reg.Register("Product", product.Product{}, encodeProduct, decodeProduct)

	reg.Register("Greek", rfq.Greek{}, encodeGreek, decodeGreek)
	reg.Register("PricingResult", rfq.PricingResult{}, encodePricingResult, decodePricingResult)
	reg.Register("PricingAttestation", rfq.PricingAttestation{}, encodeAttestation, decodeAttestation)

	reg.Register("RFQInput", rfq.Input{}, encodeRFQInput, decodeRFQInput)
	reg.Register("TermSheet", rfq.TermSheet{}, encodeTermSheet, decodeTermSheet)
	reg.Register("ClientResponse", rfq.ClientResponse{}, encodeClientResponse, decodeClientResponse)
	reg.Register("RFQResult", rfq.Result{}, encodeResult, decodeResult)
	reg.Register("Booking", rfq.Booking{}, encodeBooking, decodeBooking)

	reg.Register("MappingOutput", rfq.MappingOutput{}, encodeMappingOutput, decodeMappingOutput)
	reg.Register("PricingOutput", rfq.PricingOutput{}, encodePricingOutput, decodePricingOutput)
	reg.Register("BookingOutput", rfq.BookingOutput{}, encodeBookingOutput, decodeBookingOutput)
	reg.Register("ChecksOutput", rfq.ChecksOutput{}, encodeChecksOutput, decodeChecksOutput)
	reg.Register("ConfirmationOutput", rfq.ConfirmationOutput{}, encodeConfirmationOutput, decodeConfirmationOutput)

	return reg
}

// reader pulls typed fields out of a decoded object, keeping the first error
// it hits. Missing fields yield zero values; each record's own validation
// decides whether that is acceptable, so decoding and construction enforce
// the same invariants.
type reader struct {
	typeName string
	fields   map[string]any
	err      error
}

func newReader(typeName string, fields map[string]any) *reader {
	return &reader{typeName: typeName, fields: fields}
}

func (r *reader) done() error { return r.err }

func (r *reader) failf(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("codec: decode %s: %s", r.typeName, fmt.Sprintf(format, args...))
	}
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("codec: decode %s: %w", r.typeName, err)
	}
}

func (r *reader) rawString(key string) (string, bool) {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return "", false
	}
	switch s := raw.(type) {
	case string:
		return s, true
	case values.UTCTime:
		// Timestamp-shaped strings are eagerly parsed during the walk;
		// callers that wanted the plain string get it back.
		return s.String(), true
	}
	r.failf("field %q: expected string, got %T", key, raw)
	return "", false
}

func (r *reader) str(key string) string {
	s, _ := r.rawString(key)
	return s
}

func (r *reader) nonEmpty(key string) values.NonEmptyString {
	s, ok := r.rawString(key)
	if !ok || r.err != nil {
		return values.NonEmptyString{}
	}
	v, err := values.NewNonEmptyString(s)
	if err != nil {
		r.fail(err)
		return values.NonEmptyString{}
	}
	return v
}

func (r *reader) lei(key string) values.LEI {
	s, ok := r.rawString(key)
	if !ok || r.err != nil {
		return values.LEI{}
	}
	v, err := values.NewLEI(s)
	if err != nil {
		r.fail(err)
		return values.LEI{}
	}
	return v
}

func (r *reader) uti(key string) values.UTI {
	s, ok := r.rawString(key)
	if !ok || r.err != nil {
		return values.UTI{}
	}
	v, err := values.NewUTI(s)
	if err != nil {
		r.fail(err)
		return values.UTI{}
	}
	return v
}

func (r *reader) isin(key string) values.ISIN {
	s, ok := r.rawString(key)
	if !ok || r.err != nil {
		return values.ISIN{}
	}
	v, err := values.NewISIN(s)
	if err != nil {
		r.fail(err)
		return values.ISIN{}
	}
	return v
}

func (r *reader) currency(key string) values.Currency {
	s, ok := r.rawString(key)
	if !ok || r.err != nil {
		return values.Currency{}
	}
	v, err := values.NewCurrency(s)
	if err != nil {
		r.fail(err)
		return values.Currency{}
	}
	return v
}

func (r *reader) decimalField(key string) decimal.Decimal {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return decimal.Decimal{}
	}
	d, ok := raw.(decimal.Decimal)
	if !ok {
		r.failf("field %q: expected decimal, got %T", key, raw)
		return decimal.Decimal{}
	}
	return d
}

func (r *reader) positive(key string) values.PositiveDecimal {
	if _, present := r.fields[key]; !present {
		return values.PositiveDecimal{}
	}
	d := r.decimalField(key)
	if r.err != nil {
		return values.PositiveDecimal{}
	}
	v, err := values.NewPositiveDecimal(d)
	if err != nil {
		r.fail(err)
		return values.PositiveDecimal{}
	}
	return v
}

func (r *reader) optPositive(key string) *values.PositiveDecimal {
	if raw, present := r.fields[key]; !present || raw == nil {
		return nil
	}
	v := r.positive(key)
	if r.err != nil {
		return nil
	}
	return &v
}

func (r *reader) nonNegative(key string) values.NonNegativeDecimal {
	if _, present := r.fields[key]; !present {
		return values.NonNegativeDecimal{}
	}
	d := r.decimalField(key)
	if r.err != nil {
		return values.NonNegativeDecimal{}
	}
	v, err := values.NewNonNegativeDecimal(d)
	if err != nil {
		r.fail(err)
		return values.NonNegativeDecimal{}
	}
	return v
}

func (r *reader) money(key string) values.Money {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return values.Money{}
	}
	m, ok := raw.(values.Money)
	if !ok {
		r.failf("field %q: expected Money, got %T", key, raw)
		return values.Money{}
	}
	return m
}

func (r *reader) utcTime(key string) values.UTCTime {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return values.UTCTime{}
	}
	t, ok := raw.(values.UTCTime)
	if !ok {
		r.failf("field %q: expected timestamp, got %T", key, raw)
		return values.UTCTime{}
	}
	return t
}

func (r *reader) date(key string) values.Date {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return values.Date{}
	}
	d, ok := raw.(values.Date)
	if !ok {
		r.failf("field %q: expected date, got %T", key, raw)
		return values.Date{}
	}
	return d
}

func (r *reader) optDate(key string) *values.Date {
	raw, present := r.fields[key]
	if !present || raw == nil {
		return nil
	}
	d := r.date(key)
	if r.err != nil {
		return nil
	}
	return &d
}

func (r *reader) float(key string) float64 {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return 0
	}
	f, ok := raw.(float64)
	if !ok {
		r.failf("field %q: expected number, got %T", key, raw)
		return 0
	}
	return f
}

func (r *reader) integer(key string) int {
	return int(r.float(key))
}

func (r *reader) boolean(key string) bool {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		r.failf("field %q: expected bool, got %T", key, raw)
		return false
	}
	return b
}

func (r *reader) stringSlice(key string) []string {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		r.failf("field %q: expected array, got %T", key, raw)
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			r.failf("field %q: expected string element, got %T", key, item)
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (r *reader) detail(key string) instrument.Detail {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return nil
	}
	d, ok := raw.(instrument.Detail)
	if !ok {
		r.failf("field %q: expected instrument detail, got %T", key, raw)
		return nil
	}
	return d
}

func (r *reader) pair(key string) instrument.CurrencyPair {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return instrument.CurrencyPair{}
	}
	p, ok := raw.(instrument.CurrencyPair)
	if !ok {
		r.failf("field %q: expected currency pair, got %T", key, raw)
		return instrument.CurrencyPair{}
	}
	return p
}

func (r *reader) swap(key string) instrument.IRSwap {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return instrument.IRSwap{}
	}
	s, ok := raw.(instrument.IRSwap)
	if !ok {
		r.failf("field %q: expected swap detail, got %T", key, raw)
		return instrument.IRSwap{}
	}
	return s
}

func (r *reader) economics(key string) product.Economics {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return product.Economics{}
	}
	e, ok := raw.(product.Economics)
	if !ok {
		r.failf("field %q: expected economics, got %T", key, raw)
		return product.Economics{}
	}
	return e
}

func (r *reader) payouts(key string) []product.Payout {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		r.failf("field %q: expected array, got %T", key, raw)
		return nil
	}
	out := make([]product.Payout, 0, len(items))
	for _, item := range items {
		p, ok := item.(product.Payout)
		if !ok {
			r.failf("field %q: expected payout element, got %T", key, item)
			return nil
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) optProduct(key string) *product.Product {
	raw, present := r.fields[key]
	if !present || raw == nil {
		return nil
	}
	p, ok := raw.(product.Product)
	if !ok {
		r.failf("field %q: expected product, got %T", key, raw)
		return nil
	}
	return &p
}

func (r *reader) pricingResult(key string) rfq.PricingResult {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return rfq.PricingResult{}
	}
	p, ok := raw.(rfq.PricingResult)
	if !ok {
		r.failf("field %q: expected pricing result, got %T", key, raw)
		return rfq.PricingResult{}
	}
	return p
}

func (r *reader) optPricingResult(key string) *rfq.PricingResult {
	raw, present := r.fields[key]
	if !present || raw == nil {
		return nil
	}
	p := r.pricingResult(key)
	if r.err != nil {
		return nil
	}
	return &p
}

func (r *reader) optBooking(key string) *rfq.Booking {
	raw, present := r.fields[key]
	if !present || raw == nil {
		return nil
	}
	b, ok := raw.(rfq.Booking)
	if !ok {
		r.failf("field %q: expected booking, got %T", key, raw)
		return nil
	}
	return &b
}

func (r *reader) greeks(key string) rfq.Greeks {
	raw, ok := r.fields[key]
	if !ok || raw == nil {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		r.failf("field %q: expected array, got %T", key, raw)
		return nil
	}
	out := make(rfq.Greeks, 0, len(items))
	for _, item := range items {
		g, ok := item.(rfq.Greek)
		if !ok {
			r.failf("field %q: expected greek element, got %T", key, item)
			return nil
		}
		out = append(out, g)
	}
	return out
}

// --- values ---

func encodeMoney(v any) (map[string]any, error) {
	m := v.(values.Money)
	return map[string]any{
		"amount":   m.Amount(),
		"currency": m.Currency(),
	}, nil
}

func decodeMoney(fields map[string]any) (any, error) {
	f := newReader("Money", fields)
	amount := f.decimalField("amount")
	cur := f.currency("currency")
	if err := f.done(); err != nil {
		return nil, err
	}
	return values.NewMoney(amount, cur)
}

func encodeCurrencyPair(v any) (map[string]any, error) {
	p := v.(instrument.CurrencyPair)
	return map[string]any{
		"base":  p.Base,
		"quote": p.Quote,
	}, nil
}

func decodeCurrencyPair(fields map[string]any) (any, error) {
	f := newReader("CurrencyPair", fields)
	p := instrument.CurrencyPair{
		Base:  f.currency("base"),
		Quote: f.currency("quote"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewCurrencyPair(p.Base, p.Quote)
}

// --- instrument variants ---

func encodeEquity(v any) (map[string]any, error) {
	d := v.(instrument.Equity)
	m := map[string]any{
		"underlying_isin": d.Underlying,
	}
	if d.Exchange != "" {
		m["exchange_mic"] = d.Exchange
	}
	return m, nil
}

func decodeEquity(fields map[string]any) (any, error) {
	f := newReader("EquityDetail", fields)
	d := instrument.Equity{
		Underlying: f.isin("underlying_isin"),
		Exchange:   f.str("exchange_mic"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewEquity(d)
}

func encodeOption(v any) (map[string]any, error) {
	d := v.(instrument.Option)
	return map[string]any{
		"underlying_id":   d.Underlying,
		"strike":          d.Strike,
		"expiry_date":     d.Expiry,
		"option_type":     d.Type,
		"option_style":    d.Style,
		"settlement_type": d.Settlement,
	}, nil
}

func decodeOption(fields map[string]any) (any, error) {
	f := newReader("OptionDetail", fields)
	d := instrument.Option{
		Underlying: f.nonEmpty("underlying_id"),
		Strike:     f.nonNegative("strike"),
		Expiry:     f.date("expiry_date"),
		Type:       instrument.OptionType(f.str("option_type")),
		Style:      instrument.OptionStyle(f.str("option_style")),
		Settlement: instrument.SettlementType(f.str("settlement_type")),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewOption(d)
}

func encodeFutures(v any) (map[string]any, error) {
	d := v.(instrument.Futures)
	return map[string]any{
		"underlying_id":     d.Underlying,
		"expiry_date":       d.Expiry,
		"last_trading_date": d.LastTrading,
		"contract_size":     d.ContractSize,
		"settlement_type":   d.Settlement,
	}, nil
}

func decodeFutures(fields map[string]any) (any, error) {
	f := newReader("FuturesDetail", fields)
	d := instrument.Futures{
		Underlying:   f.nonEmpty("underlying_id"),
		Expiry:       f.date("expiry_date"),
		LastTrading:  f.date("last_trading_date"),
		ContractSize: f.positive("contract_size"),
		Settlement:   instrument.SettlementType(f.str("settlement_type")),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewFutures(d)
}

func encodeFX(v any) (map[string]any, error) {
	d := v.(instrument.FX)
	m := map[string]any{
		"currency_pair":   d.Pair,
		"settlement_date": d.SettlementDate,
		"settlement_type": d.Settlement,
		"fx_kind":         d.Type,
	}
	if d.ForwardRate != nil {
		m["forward_rate"] = d.ForwardRate
	}
	if d.FixingDate != nil {
		m["fixing_date"] = d.FixingDate
	}
	if d.FixingSource != "" {
		m["fixing_source"] = d.FixingSource
	}
	return m, nil
}

func decodeFX(fields map[string]any) (any, error) {
	f := newReader("FXDetail", fields)
	d := instrument.FX{
		Pair:           f.pair("currency_pair"),
		SettlementDate: f.date("settlement_date"),
		Settlement:     instrument.SettlementType(f.str("settlement_type")),
		Type:           instrument.FXKind(f.str("fx_kind")),
		ForwardRate:    f.optPositive("forward_rate"),
		FixingDate:     f.optDate("fixing_date"),
		FixingSource:   f.str("fixing_source"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewFX(d)
}

func encodeIRSwap(v any) (map[string]any, error) {
	d := v.(instrument.IRSwap)
	return map[string]any{
		"fixed_rate":        d.FixedRate,
		"floating_index":    d.FloatingIndex,
		"day_count":         d.DayCount,
		"payment_frequency": d.Frequency,
		"tenor_months":      d.TenorMonths,
		"effective_date":    d.EffectiveDate,
		"maturity_date":     d.MaturityDate,
	}, nil
}

func decodeIRSwap(fields map[string]any) (any, error) {
	f := newReader("IRSwapDetail", fields)
	d := instrument.IRSwap{
		FixedRate:     f.decimalField("fixed_rate"),
		FloatingIndex: f.nonEmpty("floating_index"),
		DayCount:      instrument.DayCount(f.str("day_count")),
		Frequency:     instrument.PaymentFrequency(f.str("payment_frequency")),
		TenorMonths:   f.integer("tenor_months"),
		EffectiveDate: f.date("effective_date"),
		MaturityDate:  f.date("maturity_date"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewIRSwap(d)
}

func encodeSwaption(v any) (map[string]any, error) {
	d := v.(instrument.Swaption)
	return map[string]any{
		"swap":            d.Swap,
		"option_expiry":   d.OptionExpiry,
		"option_style":    d.Style,
		"settlement_type": d.Settlement,
	}, nil
}

func decodeSwaption(fields map[string]any) (any, error) {
	f := newReader("SwaptionDetail", fields)
	d := instrument.Swaption{
		Swap:         f.swap("swap"),
		OptionExpiry: f.date("option_expiry"),
		Style:        instrument.OptionStyle(f.str("option_style")),
		Settlement:   instrument.SettlementType(f.str("settlement_type")),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewSwaption(d)
}

func encodeCDS(v any) (map[string]any, error) {
	d := v.(instrument.CDS)
	return map[string]any{
		"reference_entity": d.ReferenceEntity,
		"spread_bps":       d.SpreadBps,
		"effective_date":   d.EffectiveDate,
		"maturity_date":    d.MaturityDate,
		"restructuring":    d.Restructuring,
	}, nil
}

func decodeCDS(fields map[string]any) (any, error) {
	f := newReader("CDSDetail", fields)
	d := instrument.CDS{
		ReferenceEntity: f.nonEmpty("reference_entity"),
		SpreadBps:       f.nonNegative("spread_bps"),
		EffectiveDate:   f.date("effective_date"),
		MaturityDate:    f.date("maturity_date"),
		Restructuring:   instrument.RestructuringClause(f.str("restructuring")),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return instrument.NewCDS(d)
}

// --- product ---

func encodeEconomics(v any) (map[string]any, error) {
	e := v.(product.Economics)
	return map[string]any{
		"notional": e.Notional,
		"currency": e.Currency,
		"side":     e.Side,
	}, nil
}

func decodeEconomics(fields map[string]any) (any, error) {
	f := newReader("Economics", fields)
	e := product.Economics{
		Notional: f.positive("notional"),
		Currency: f.currency("currency"),
		Side:     instrument.Side(f.str("side")),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func encodePayout(v any) (map[string]any, error) {
	p := v.(product.Payout)
	return map[string]any{
		"payout_type": p.Type,
		"description": p.Description,
	}, nil
}

func decodePayout(fields map[string]any) (any, error) {
	f := newReader("Payout", fields)
	p := product.Payout{
		Type:        product.PayoutType(f.str("payout_type")),
		Description: f.nonEmpty("description"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeProduct(v any) (map[string]any, error) {
	p := v.(product.Product)
	return map[string]any{
		"product_id":    p.ProductID,
		"taxonomy_code": p.TaxonomyCode,
		"asset_class":   p.AssetClass,
		"economics":     p.Economics,
		"payouts":       p.Payouts,
	}, nil
}

func decodeProduct(fields map[string]any) (any, error) {
	f := newReader("Product", fields)
	p := product.Product{
		ProductID:    f.nonEmpty("product_id"),
		TaxonomyCode: f.nonEmpty("taxonomy_code"),
		AssetClass:   product.AssetClass(f.str("asset_class")),
		Economics:    f.economics("economics"),
		Payouts:      f.payouts("payouts"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return product.New(p)
}

// --- pricing ---

func encodeGreek(v any) (map[string]any, error) {
	g := v.(rfq.Greek)
	return map[string]any{
		"name":  g.Name,
		"value": g.Value,
	}, nil
}

func decodeGreek(fields map[string]any) (any, error) {
	f := newReader("Greek", fields)
	g := rfq.Greek{
		Name:  f.str("name"),
		Value: f.decimalField("value"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if g.Name == "" {
		return nil, fmt.Errorf("codec: decode Greek: name is required")
	}
	return g, nil
}

func encodePricingResult(v any) (map[string]any, error) {
	p := v.(rfq.PricingResult)
	m := map[string]any{
		"indicative_price":        p.IndicativePrice,
		"model_name":              p.ModelName,
		"market_data_snapshot_id": p.SnapshotID,
		"confidence":              p.Confidence,
		"pricing_attestation_id":  p.AttestationID,
		"timestamp":               p.Timestamp,
	}
	if p.Greeks != nil {
		m["greeks"] = p.Greeks
	}
	return m, nil
}

func decodePricingResult(fields map[string]any) (any, error) {
	f := newReader("PricingResult", fields)
	p := rfq.PricingResult{
		IndicativePrice: f.money("indicative_price"),
		Greeks:          f.greeks("greeks"),
		ModelName:       f.nonEmpty("model_name"),
		SnapshotID:      f.nonEmpty("market_data_snapshot_id"),
		Confidence:      f.float("confidence"),
		AttestationID:   f.nonEmpty("pricing_attestation_id"),
		Timestamp:       f.utcTime("timestamp"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewPricingResult(p)
}

func encodeAttestation(v any) (map[string]any, error) {
	a := v.(rfq.PricingAttestation)
	return map[string]any{
		"attestation_id":          a.AttestationID,
		"rfq_id":                  a.RFQID,
		"model_name":              a.ModelName,
		"market_data_snapshot_id": a.SnapshotID,
		"price":                   a.Price,
		"confidence":              a.Confidence,
		"generated_at":            a.GeneratedAt,
	}, nil
}

func decodeAttestation(fields map[string]any) (any, error) {
	f := newReader("PricingAttestation", fields)
	a := rfq.PricingAttestation{
		AttestationID: f.nonEmpty("attestation_id"),
		RFQID:         f.nonEmpty("rfq_id"),
		ModelName:     f.nonEmpty("model_name"),
		SnapshotID:    f.nonEmpty("market_data_snapshot_id"),
		Price:         f.money("price"),
		Confidence:    f.float("confidence"),
		GeneratedAt:   f.utcTime("generated_at"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewPricingAttestation(a)
}

// --- workflow records ---

func encodeRFQInput(v any) (map[string]any, error) {
	in := v.(rfq.Input)
	return map[string]any{
		"rfq_id":            in.RFQID,
		"client_lei":        in.ClientLEI,
		"instrument_detail": in.Detail,
		"notional":          in.Notional,
		"currency":          in.Currency,
		"side":              in.Side,
		"trade_date":        in.TradeDate,
		"settlement_date":   in.SettlementDate,
		"timestamp":         in.Timestamp,
	}, nil
}

func decodeRFQInput(fields map[string]any) (any, error) {
	f := newReader("RFQInput", fields)
	in := rfq.Input{
		RFQID:          f.nonEmpty("rfq_id"),
		ClientLEI:      f.lei("client_lei"),
		Detail:         f.detail("instrument_detail"),
		Notional:       f.positive("notional"),
		Currency:       f.currency("currency"),
		Side:           instrument.Side(f.str("side")),
		TradeDate:      f.date("trade_date"),
		SettlementDate: f.date("settlement_date"),
		Timestamp:      f.utcTime("timestamp"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewInput(in)
}

func encodeTermSheet(v any) (map[string]any, error) {
	ts := v.(rfq.TermSheet)
	return map[string]any{
		"rfq_id":         ts.RFQID,
		"pricing_result": ts.Pricing,
		"document_hash":  ts.DocumentHash,
		"generated_at":   ts.GeneratedAt,
		"valid_until":    ts.ValidUntil,
	}, nil
}

func decodeTermSheet(fields map[string]any) (any, error) {
	f := newReader("TermSheet", fields)
	ts := rfq.TermSheet{
		RFQID:        f.nonEmpty("rfq_id"),
		Pricing:      f.pricingResult("pricing_result"),
		DocumentHash: f.nonEmpty("document_hash"),
		GeneratedAt:  f.utcTime("generated_at"),
		ValidUntil:   f.utcTime("valid_until"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewTermSheet(ts)
}

func encodeClientResponse(v any) (map[string]any, error) {
	r := v.(rfq.ClientResponse)
	m := map[string]any{
		"rfq_id":    r.RFQID,
		"action":    r.Action,
		"timestamp": r.Timestamp,
	}
	if r.TermSheetHash != "" {
		m["term_sheet_hash"] = r.TermSheetHash
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return m, nil
}

func decodeClientResponse(fields map[string]any) (any, error) {
	f := newReader("ClientResponse", fields)
	r := rfq.ClientResponse{
		RFQID:         f.nonEmpty("rfq_id"),
		Action:        rfq.Action(f.str("action")),
		Timestamp:     f.utcTime("timestamp"),
		TermSheetHash: f.str("term_sheet_hash"),
		Message:       f.str("message"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewClientResponse(r)
}

func encodeResult(v any) (map[string]any, error) {
	r := v.(rfq.Result)
	m := map[string]any{
		"rfq_id":  r.RFQID,
		"outcome": r.Outcome,
	}
	if r.TradeID != "" {
		m["trade_id"] = r.TradeID
	}
	if r.RejectionReasons != nil {
		m["rejection_reasons"] = r.RejectionReasons
	}
	if r.AttestationID != "" {
		m["pricing_attestation_id"] = r.AttestationID
	}
	return m, nil
}

func decodeResult(fields map[string]any) (any, error) {
	f := newReader("RFQResult", fields)
	r := rfq.Result{
		RFQID:            f.nonEmpty("rfq_id"),
		Outcome:          rfq.Outcome(f.str("outcome")),
		TradeID:          f.str("trade_id"),
		RejectionReasons: f.stringSlice("rejection_reasons"),
		AttestationID:    f.str("pricing_attestation_id"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewResult(r)
}

func encodeBooking(v any) (map[string]any, error) {
	b := v.(rfq.Booking)
	return map[string]any{
		"trade_id":  b.TradeID,
		"uti":       b.UTI,
		"booked_at": b.BookedAt,
	}, nil
}

func decodeBooking(fields map[string]any) (any, error) {
	f := newReader("Booking", fields)
	b := rfq.Booking{
		TradeID:  f.nonEmpty("trade_id"),
		UTI:      f.uti("uti"),
		BookedAt: f.utcTime("booked_at"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rfq.NewBooking(b)
}

// --- activity output wrappers ---

func encodeMappingOutput(v any) (map[string]any, error) {
	o := v.(rfq.MappingOutput)
	m := map[string]any{}
	if o.Product != nil {
		m["product"] = o.Product
	}
	if o.Err != "" {
		m["error"] = o.Err
	}
	return m, nil
}

func decodeMappingOutput(fields map[string]any) (any, error) {
	f := newReader("MappingOutput", fields)
	o := rfq.MappingOutput{
		Product: f.optProduct("product"),
		Err:     f.str("error"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func encodePricingOutput(v any) (map[string]any, error) {
	o := v.(rfq.PricingOutput)
	m := map[string]any{}
	if o.Result != nil {
		m["result"] = o.Result
	}
	if o.Err != "" {
		m["error"] = o.Err
	}
	return m, nil
}

func decodePricingOutput(fields map[string]any) (any, error) {
	f := newReader("PricingOutput", fields)
	o := rfq.PricingOutput{
		Result: f.optPricingResult("result"),
		Err:    f.str("error"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func encodeBookingOutput(v any) (map[string]any, error) {
	o := v.(rfq.BookingOutput)
	m := map[string]any{}
	if o.Booking != nil {
		m["booking"] = o.Booking
	}
	if o.Err != "" {
		m["error"] = o.Err
	}
	return m, nil
}

func decodeBookingOutput(fields map[string]any) (any, error) {
	f := newReader("BookingOutput", fields)
	o := rfq.BookingOutput{
		Booking: f.optBooking("booking"),
		Err:     f.str("error"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func encodeChecksOutput(v any) (map[string]any, error) {
	o := v.(rfq.ChecksOutput)
	m := map[string]any{
		"passed": o.Passed,
	}
	if o.Reasons != nil {
		m["reasons"] = o.Reasons
	}
	return m, nil
}

func decodeChecksOutput(fields map[string]any) (any, error) {
	f := newReader("ChecksOutput", fields)
	o := rfq.ChecksOutput{
		Passed:  f.boolean("passed"),
		Reasons: f.stringSlice("reasons"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func encodeConfirmationOutput(v any) (map[string]any, error) {
	o := v.(rfq.ConfirmationOutput)
	m := map[string]any{
		"trade_id":  o.TradeID,
		"delivered": o.Delivered,
	}
	if !o.DeliveredAt.IsZero() {
		m["delivered_at"] = o.DeliveredAt
	}
	return m, nil
}

func decodeConfirmationOutput(fields map[string]any) (any, error) {
	f := newReader("ConfirmationOutput", fields)
	o := rfq.ConfirmationOutput{
		TradeID:     f.nonEmpty("trade_id"),
		Delivered:   f.boolean("delivered"),
		DeliveredAt: f.utcTime("delivered_at"),
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
