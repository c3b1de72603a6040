package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/quote"
	"rbx/logicore/internal/rate/setup"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

var (
	configPath   = flag.String("config", "./config/config.yaml", "配置文件路径")
	testcasePath = flag.String("testcase", "./tools/fasttest/testcase/quotes.json", "测试用例路径")
	skipDB       = flag.Bool("skip-db", false, "强制使用配置文件中的静态费率卡和内置区域目录")
)

// TestCase 测试用例结构
type TestCase struct {
	Name    string             `json:"name"`
	Request model.QuoteRequest `json:"request"`
	Expect  Expectation        `json:"expect"`
}

// Expectation 期望结果，留空的字段不校验
type Expectation struct {
	Zone      string                     `json:"zone,omitempty"`
	Status    string                     `json:"status,omitempty"`
	ErrorKind string                     `json:"error_kind,omitempty"`
	Totals    map[string]decimal.Decimal `json:"totals,omitempty"` // mode -> total
}

func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - LogiCore 报价快速测试工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *skipDB {
		fmt.Println("⚠️  Skip-DB mode: using static rate cards and built-in pincode directory")
		cfg.Rates.Source = config.SourceStatic
		cfg.Rates.Directory = "static"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Invalid config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config loaded: %s (source=%s)\n", cfg.App.Name, cfg.Rates.Source)

	// 2. 加载测试用例
	testCases, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test cases: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d test cases from %s\n", len(testCases), *testcasePath)

	// 3. 初始化报价服务
	ctx := context.Background()
	svc, cleanup, err := setup.QuoteService(ctx, cfg, logger.NewNop())
	if err != nil {
		fmt.Printf("❌ Failed to create quote service: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	fmt.Println("✅ Quote service initialized")

	// 4. 执行测试用例
	fmt.Println("\n========================================")
	fmt.Println("  Running Test Cases")
	fmt.Println("========================================")

	successCount := 0
	failureCount := 0

	for i, tc := range testCases {
		fmt.Printf("\n[Test %d/%d] %s: %s -> %s, %vkg\n", i+1, len(testCases), tc.Name,
			tc.Request.SourcePincode, tc.Request.DestinationPincode, tc.Request.WeightKg)
		fmt.Println("----------------------------------------")

		startTime := time.Now()
		err := runTestCase(ctx, svc, tc)
		duration := time.Since(startTime)

		if err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
			fmt.Printf("⏱️  Duration: %v\n", duration)
			failureCount++
		} else {
			fmt.Printf("✅ PASSED\n")
			fmt.Printf("⏱️  Duration: %v\n", duration)
			successCount++
		}
	}

	// 5. 输出测试汇总
	fmt.Println("\n========================================")
	fmt.Println("  Test Summary")
	fmt.Println("========================================")
	fmt.Printf("Total: %d\n", len(testCases))
	fmt.Printf("Passed: %d ✅\n", successCount)
	fmt.Printf("Failed: %d ❌\n", failureCount)

	if failureCount > 0 {
		os.Exit(1)
	}
}

// loadTestCases 从 JSON 文件加载测试用例
func loadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var testCases []TestCase
	if err := json.Unmarshal(data, &testCases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}

	return testCases, nil
}

// runTestCase 执行单个报价并与期望比对
func runTestCase(ctx context.Context, svc *quote.Service, tc TestCase) error {
	result, err := svc.Quote(ctx, tc.Request)
	if err != nil {
		if tc.Expect.ErrorKind != "" && errorutil.IsKind(err, errorutil.Kind(tc.Expect.ErrorKind)) {
			fmt.Printf("  Expected error: %v\n", err)
			return nil
		}
		return fmt.Errorf("quote failed: %w", err)
	}
	if tc.Expect.ErrorKind != "" {
		return fmt.Errorf("expected %s error, got status %s", tc.Expect.ErrorKind, result.Status)
	}

	// 打印报价结果
	fmt.Printf("  Zone=%s, Status=%s, Recommended=%s\n", result.Zone, result.Status, result.RecommendedMode)
	for _, r := range result.Rates {
		fmt.Printf("    - Mode=%s, Courier=%s, Total=%s, Tags=%v\n", r.Mode, r.Courier, r.Total.StringFixed(2), r.Tags)
	}
	for _, f := range result.Failed {
		fmt.Printf("    - Dropped Mode=%s: %s\n", f.Mode, f.Reason)
	}

	if tc.Expect.Zone != "" && tc.Expect.Zone != result.Zone {
		return fmt.Errorf("zone mismatch: want %s, got %s", tc.Expect.Zone, result.Zone)
	}
	if tc.Expect.Status != "" && tc.Expect.Status != result.Status {
		return fmt.Errorf("status mismatch: want %s, got %s", tc.Expect.Status, result.Status)
	}
	for mode, want := range tc.Expect.Totals {
		got, ok := totalFor(result, mode)
		if !ok {
			return fmt.Errorf("mode %s missing from result", mode)
		}
		if !got.Equal(want) {
			return fmt.Errorf("total mismatch for %s: want %s, got %s", mode, want, got)
		}
	}

	return nil
}

func totalFor(result *model.QuoteResult, mode string) (decimal.Decimal, bool) {
	for _, r := range result.Rates {
		if r.Mode == mode {
			return r.Total, true
		}
	}
	return decimal.Zero, false
}
