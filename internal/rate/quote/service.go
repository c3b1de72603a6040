// Package quote 多承运商报价：区域判定 → 拉取费率卡 → 并发计算 → 排序打标。
//
// 单个费率卡计算失败只会被记录并剔除，不影响其余承运商的结果。
package quote

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/calculator"
	"rbx/logicore/internal/rate/zone"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

// Source 费率卡来源（外部协作方），实现方不应缓存
type Source interface {
	List(ctx context.Context) ([]calculator.RateCard, error)
}

// SourceFunc 函数适配 Source
type SourceFunc func(ctx context.Context) ([]calculator.RateCard, error)

// List 实现 Source
func (f SourceFunc) List(ctx context.Context) ([]calculator.RateCard, error) {
	return f(ctx)
}

// Service 报价服务
type Service struct {
	source      Source
	directory   zone.Directory
	logger      logger.Logger
	concurrency int
}

// Option 服务选项
type Option func(*Service)

// WithConcurrency 限制单次报价的并发计算数（<=0 不限制）
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// NewService 创建报价服务
func NewService(source Source, directory zone.Directory, log logger.Logger, opts ...Option) *Service {
	if directory == nil {
		directory = zone.NewStaticDirectory()
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{
		source:    source,
		directory: directory,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Zone 仅做区域判定
func (s *Service) Zone(source, destination string) (zone.Zone, error) {
	return zone.Determine(source, destination, s.directory)
}

// Cards 当前费率卡快照
func (s *Service) Cards(ctx context.Context) ([]calculator.RateCard, error) {
	cards, err := s.source.List(ctx)
	if err != nil && !errorutil.IsKind(err, errorutil.KindUpstream) {
		return nil, errorutil.Upstream("fetch rate cards failed", err)
	}
	return cards, err
}

// outcome 单个费率卡的计算结果
type outcome struct {
	rate   *model.ShippingRate
	failed *model.FailedRate
}

// Quote 计算多承运商报价
// 输入非法返回 INVALID_INPUT；费率卡拉取失败返回 UPSTREAM；ctx 取消则整体中止。
// 没有任何可用费率时返回 NO_RATES 状态而不是错误。
func (s *Service) Quote(ctx context.Context, req model.QuoteRequest) (*model.QuoteResult, error) {
	// 1. 边界校验
	z, weight, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	// 2. 拉取费率卡
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cards, err := s.source.List(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errorutil.IsKind(err, errorutil.KindUpstream) {
			return nil, err
		}
		return nil, errorutil.Upstream("fetch rate cards failed", err)
	}

	cards, failed := selectCards(cards, req.Modes)

	s.logger.Debugf(ctx, "[QuoteService] zone=%s chargeable_weight=%v cards=%d", z, weight, len(cards))

	// 3. 并发计算
	in := calculator.Input{
		WeightKg:      weight,
		IsCOD:         req.IsCOD,
		DeclaredValue: req.DeclaredValue,
	}
	outcomes, err := s.fanOut(ctx, z, in, cards)
	if err != nil {
		return nil, err
	}

	// 4. 汇总
	result := &model.QuoteResult{
		Zone:   string(z),
		Rates:  make([]model.ShippingRate, 0, len(outcomes)),
		Failed: failed,
	}
	for _, o := range outcomes {
		switch {
		case o.rate != nil:
			result.Rates = append(result.Rates, *o.rate)
		case o.failed != nil:
			result.Failed = append(result.Failed, *o.failed)
		}
	}

	rankRates(result)
	return result, nil
}

// Validate 只做输入校验，不访问费率卡来源；异步报价在入队前调用
func (s *Service) Validate(req model.QuoteRequest) error {
	_, _, err := s.prepare(req)
	return err
}

// prepare 校验请求并返回区域和计费重量
func (s *Service) prepare(req model.QuoteRequest) (zone.Zone, float64, error) {
	z, err := zone.Determine(req.SourcePincode, req.DestinationPincode, s.directory)
	if err != nil {
		return "", 0, err
	}
	if req.DeclaredValue.IsNegative() {
		return "", 0, errorutil.InvalidInput("declared_value", "declared value cannot be negative")
	}
	if req.VolumetricDivisor < 0 {
		return "", 0, errorutil.InvalidInput("volumetric_divisor", "volumetric divisor cannot be negative")
	}
	var dims calculator.Dimensions
	if req.Dimensions != nil {
		dims = calculator.Dimensions{
			LengthCm: req.Dimensions.LengthCm,
			WidthCm:  req.Dimensions.WidthCm,
			HeightCm: req.Dimensions.HeightCm,
		}
	}
	weight, err := calculator.ChargeableWeight(req.WeightKg, dims, req.VolumetricDivisor)
	if err != nil {
		return "", 0, err
	}
	return z, weight, nil
}

// fanOut 每张费率卡一个 goroutine；失败的费率卡被记录而不是返回错误
func (s *Service) fanOut(ctx context.Context, z zone.Zone, in calculator.Input, cards []calculator.RateCard) ([]outcome, error) {
	outcomes := make([]outcome, len(cards))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i := range cards {
		card := cards[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			b, err := safeCalculate(z, in, card)
			if err != nil {
				perr := errorutil.Partial(card.Mode, err)
				s.logger.Warnf(gctx, "[QuoteService] Dropping rate card %q: %v", card.Mode, err)
				outcomes[i] = outcome{failed: &model.FailedRate{Mode: card.Mode, Reason: perr.DevDetails}}
				return nil
			}

			rate := toShippingRate(b)
			outcomes[i] = outcome{rate: &rate}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// safeCalculate 计算单张费率卡，panic 视为该卡失败
func safeCalculate(z zone.Zone, in calculator.Input, card calculator.RateCard) (b calculator.Breakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculation panic: %v", r)
		}
	}()
	return calculator.Calculate(z, in, card)
}

// selectCards 按 modes 过滤，并剔除重复 mode
func selectCards(cards []calculator.RateCard, modes []string) ([]calculator.RateCard, []model.FailedRate) {
	var failed []model.FailedRate

	wanted := make(map[string]bool, len(modes))
	for _, m := range modes {
		if m = strings.TrimSpace(m); m != "" {
			wanted[strings.ToLower(m)] = false
		}
	}

	seen := make(map[string]bool, len(cards))
	selected := make([]calculator.RateCard, 0, len(cards))
	for _, card := range cards {
		key := strings.ToLower(card.Mode)
		if len(wanted) > 0 {
			if _, ok := wanted[key]; !ok {
				continue
			}
			wanted[key] = true
		}
		if key != "" && seen[key] {
			failed = append(failed, model.FailedRate{Mode: card.Mode, Reason: "duplicate mode in rate card snapshot"})
			continue
		}
		seen[key] = true
		selected = append(selected, card)
	}

	for _, m := range modes {
		key := strings.ToLower(strings.TrimSpace(m))
		if found, ok := wanted[key]; ok && !found {
			failed = append(failed, model.FailedRate{Mode: m, Reason: "no rate card for mode"})
			delete(wanted, key)
		}
	}

	return selected, failed
}

// rankRates 按总价升序（同价按 mode），打 CHEAPEST/FASTEST 标签
func rankRates(result *model.QuoteResult) {
	rates := result.Rates
	if len(rates) == 0 {
		result.Status = model.QuoteStatusNoRates
		return
	}

	sort.SliceStable(rates, func(i, j int) bool {
		if c := rates[i].Total.Cmp(rates[j].Total); c != 0 {
			return c < 0
		}
		return rates[i].Mode < rates[j].Mode
	})

	rates[0].Tags = append(rates[0].Tags, model.RateTagCheapest)

	fastest := -1
	for i, r := range rates {
		if r.TransitDays <= 0 {
			continue
		}
		if fastest < 0 || r.TransitDays < rates[fastest].TransitDays {
			fastest = i
		}
	}
	if fastest >= 0 {
		rates[fastest].Tags = append(rates[fastest].Tags, model.RateTagFastest)
	}

	result.Status = model.QuoteStatusOK
	result.RecommendedMode = rates[0].Mode
}

func toShippingRate(b calculator.Breakdown) model.ShippingRate {
	return model.ShippingRate{
		Mode:                   b.Mode,
		Courier:                b.Courier,
		Service:                b.Service,
		Zone:                   string(b.Zone),
		ChargeableWeight:       b.ChargeableWeight,
		BaseCharge:             b.BaseCharge,
		AdditionalWeightCharge: b.AdditionalWeightCharge,
		CODCharge:              b.CODCharge,
		Subtotal:               b.Subtotal,
		GSTPercentage:          b.GSTPercentage,
		GST:                    b.GST,
		Total:                  b.Total,
		TransitDays:            b.TransitDays,
	}
}
