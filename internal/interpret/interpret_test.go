package interpret

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/llm"
	"github.com/rthomason/storelens/internal/schema"
)

type mockService struct {
	reply string
	err   error
	calls int
	last  []llm.Message
}

func (m *mockService) Chat(_ context.Context, messages []llm.Message, _ llm.Options) (string, error) {
	m.calls++
	m.last = messages
	return m.reply, m.err
}

func revenueRows() *database.RowSet {
	return &database.RowSet{
		Columns: []string{"customer_id", "name", "total_spent"},
		Records: [][]any{
			{"12345", "Ada Byrne", 1250.50},
			{"12346", "Tom Okafor", 310.00},
			{"12347", "Mia Larsen", 89.50},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want Classification
	}{
		{
			"customer product relationship",
			"SELECT c.name, p.name FROM customers c JOIN orders o ON 1=1 JOIN order_items oi ON 1=1 JOIN products p ON 1=1",
			ClassCustomerProductRelationship,
		},
		{
			"customer revenue",
			"SELECT c.name, SUM(o.total_amount) FROM customers c JOIN orders o ON 1=1 GROUP BY c.name",
			ClassCustomerRevenue,
		},
		{
			"customer orders",
			"SELECT c.name, o.order_date FROM customers c JOIN orders o ON 1=1",
			ClassCustomerOrders,
		},
		{
			"time series",
			"SELECT DATE_TRUNC('month', t.created) FROM t1 JOIN t2 ON 1=1",
			ClassTimeSeries,
		},
		{
			"multi table general",
			"SELECT a.x FROM t1 a JOIN t2 b ON 1=1",
			ClassMultiTableGeneral,
		},
		{"customer list", "SELECT name FROM customers", ClassCustomerList},
		{"product list", "SELECT name FROM products", ClassProductList},
		{"order details", "SELECT quantity FROM order_items", ClassOrderDetails},
		{"order list", "SELECT status FROM orders", ClassOrderList},
		{"aggregate", "SELECT SUM(x) FROM t1", ClassAggregate},
		{"aggregate over entity table", "SELECT SUM(order_items.quantity) AS total_quantity FROM order_items", ClassAggregate},
		{"general", "SELECT x FROM t1", ClassGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sql))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	sql := "SELECT c.name FROM customers c JOIN orders o ON 1=1"

	first := Classify(sql)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(sql))
	}
}

func TestBuildContextMetrics(t *testing.T) {
	ctx := BuildContext(ClassCustomerRevenue, revenueRows())

	assert.True(t, ctx.HasData)
	assert.Equal(t, 3, ctx.RowCount)
	assert.Equal(t, []string{"customer_id", "name", "total_spent"}, ctx.Columns)

	require.Len(t, ctx.KeyMetrics, 1)
	assert.Equal(t, "total_spent", ctx.KeyMetrics[0].Column)
	assert.InDelta(t, 1650.00, ctx.KeyMetrics[0].Total, 0.001)
}

func TestBuildContextMetricsCapsAtTwo(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"total_a", "sum_b", "count_c"},
		Records: [][]any{{1.0, 2.0, 3.0}},
	}

	ctx := BuildContext(ClassAggregate, rows)
	assert.Len(t, ctx.KeyMetrics, 2)
	assert.Equal(t, "total_a", ctx.KeyMetrics[0].Column)
	assert.Equal(t, "sum_b", ctx.KeyMetrics[1].Column)
}

func TestBuildContextSkipsNonNumericMetricColumns(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"total_label", "amount"},
		Records: [][]any{{"not a number", 10.0}, {"still not", 20.0}},
	}

	ctx := BuildContext(ClassAggregate, rows)
	require.Len(t, ctx.KeyMetrics, 1)
	assert.Equal(t, "amount", ctx.KeyMetrics[0].Column)
	assert.InDelta(t, 30.0, ctx.KeyMetrics[0].Total, 0.001)
}

func TestBuildContextTrend(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"month", "monthly_revenue"},
		Records: [][]any{
			{"2024-03", 150.0},
			{"2024-01", 100.0},
			{"2024-02", 120.0},
		},
	}

	ctx := BuildContext(ClassTimeSeries, rows)
	require.Len(t, ctx.Trends, 1)
	assert.Equal(t, "Overall trend: increased by 50.0%", ctx.Trends[0])
}

func TestBuildContextTrendDecreasing(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"month", "revenue"},
		Records: [][]any{
			{"2024-01", 200.0},
			{"2024-02", 100.0},
		},
	}

	ctx := BuildContext(ClassTimeSeries, rows)
	require.Len(t, ctx.Trends, 1)
	assert.Equal(t, "Overall trend: decreased by 50.0%", ctx.Trends[0])
}

func TestBuildContextTrendSkipsZeroEndpoints(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"month", "revenue"},
		Records: [][]any{
			{"2024-01", 0.0},
			{"2024-02", 100.0},
		},
	}

	ctx := BuildContext(ClassTimeSeries, rows)
	assert.Empty(t, ctx.Trends)
}

func TestBuildContextInsight(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"country", "product"},
		Records: [][]any{
			{"Germany", "Mug"},
			{"Germany", "Lamp"},
			{"France", "Mug"},
		},
	}

	ctx := BuildContext(ClassCustomerProductRelationship, rows)
	require.Len(t, ctx.Insights, 1)
	assert.Equal(t, "Most common country: Germany (2 occurrences)", ctx.Insights[0])
}

func TestBuildContextEmptyRows(t *testing.T) {
	ctx := BuildContext(ClassAggregate, &database.RowSet{Columns: []string{"total"}})

	assert.False(t, ctx.HasData)
	assert.Equal(t, 0, ctx.RowCount)
	assert.Empty(t, ctx.KeyMetrics)
}

// decimalValue builds the representation pgx rows.Values() hands back for a
// Postgres NUMERIC column: 125050 with exponent -2 is 1250.50
func decimalValue(digits int64, exp int32) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(digits), Exp: exp, Valid: true}
}

func TestToFloatDecimalColumn(t *testing.T) {
	v, ok := toFloat(decimalValue(125050, -2))
	require.True(t, ok)
	assert.InDelta(t, 1250.50, v, 0.001)

	_, ok = toFloat(pgtype.Numeric{})
	assert.False(t, ok)

	_, ok = toFloat(pgtype.Numeric{NaN: true, Valid: true})
	assert.False(t, ok)
}

func TestBuildContextMetricsFromDecimalColumns(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"customer_id", "name", "total_spent"},
		Records: [][]any{
			{"12345", "Ada Byrne", decimalValue(125050, -2)},
			{"12346", "Tom Okafor", decimalValue(31000, -2)},
		},
	}

	ctx := BuildContext(ClassAggregate, rows)

	require.Len(t, ctx.KeyMetrics, 1)
	assert.Equal(t, "total_spent", ctx.KeyMetrics[0].Column)
	assert.InDelta(t, 1560.50, ctx.KeyMetrics[0].Total, 0.001)
}

func TestBuildContextTrendFromDriverValues(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"month", "monthly_revenue"},
		Records: [][]any{
			{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), decimalValue(20000, -2)},
			{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), decimalValue(10000, -2)},
		},
	}

	ctx := BuildContext(ClassTimeSeries, rows)

	require.Len(t, ctx.Trends, 1)
	assert.Equal(t, "Overall trend: increased by 100.0%", ctx.Trends[0])
}

func TestLocalAnswerCustomerRevenueDecimalColumns(t *testing.T) {
	sql := "SELECT c.name, SUM(o.total_amount) as total_spent FROM customers c JOIN orders o ON 1=1 GROUP BY c.name"
	rows := &database.RowSet{
		Columns: []string{"name", "total_spent"},
		Records: [][]any{
			{"Ada Byrne", decimalValue(125050, -2)},
			{"Tom Okafor", decimalValue(31000, -2)},
		},
	}

	answer := LocalAnswer("who spent most", sql, rows)

	assert.Contains(t, answer, "2 customer records")
	assert.Contains(t, answer, "$1,560.50")
}

func TestLocalAnswerEmptyRows(t *testing.T) {
	answer := LocalAnswer("anything", "SELECT 1", &database.RowSet{})
	assert.Equal(t, "No matching records found for your query.", answer)
}

func TestLocalAnswerCustomerRevenue(t *testing.T) {
	sql := "SELECT c.name, SUM(o.total_amount) as total_spent FROM customers c JOIN orders o ON 1=1 GROUP BY c.name"
	answer := LocalAnswer("who spent most", sql, revenueRows())

	assert.Contains(t, answer, "3 customer records")
	assert.Contains(t, answer, "$1,650.00")
}

func TestLocalAnswerCustomerProductRelationship(t *testing.T) {
	sql := "SELECT c.name, p.name as product_name FROM customers c JOIN products p ON 1=1"
	rows := &database.RowSet{
		Columns: []string{"name", "product_name"},
		Records: [][]any{{"Ada Byrne", "Ceramic Mug"}},
	}

	answer := LocalAnswer("", sql, rows)
	assert.Contains(t, answer, "1 customer-product relationships")
	assert.Contains(t, answer, "Ada Byrne purchased Ceramic Mug")
}

func TestLocalAnswerProductSales(t *testing.T) {
	sql := "SELECT p.name, SUM(oi.quantity) as total_quantity FROM products p JOIN order_items oi ON 1=1 GROUP BY p.name"
	rows := &database.RowSet{
		Columns: []string{"name", "total_quantity"},
		Records: [][]any{{"Mug", int64(1200)}, {"Lamp", int64(300)}},
	}

	answer := LocalAnswer("", sql, rows)
	assert.Contains(t, answer, "1,500 units")
}

func TestLocalAnswerSingleTable(t *testing.T) {
	tests := []struct {
		sql      string
		contains string
	}{
		{"SELECT name FROM customers", "Customer database contains"},
		{"SELECT name FROM products", "Product catalog includes"},
		{"SELECT quantity FROM order_items", "line items"},
		{"SELECT status FROM orders", "Order system contains"},
	}

	rows := &database.RowSet{Columns: []string{"x"}, Records: [][]any{{"a"}, {"b"}}}

	for _, tt := range tests {
		answer := LocalAnswer("", tt.sql, rows)
		assert.Contains(t, answer, tt.contains, tt.sql)
	}
}

func TestLocalAnswerSingleValue(t *testing.T) {
	rows := &database.RowSet{Columns: []string{"cnt"}, Records: [][]any{{int64(42)}}}
	answer := LocalAnswer("how many", "SELECT x FROM t1", rows)

	assert.Equal(t, "The result is 42.", answer)
}

func TestLocalAnswerAggregate(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"grand"},
		Records: [][]any{{100.5}, {200.5}},
	}

	answer := LocalAnswer("", "SELECT SUM(x) as grand FROM t1", rows)
	assert.Contains(t, answer, "total of 301.00 across 2 records")
}

func TestLocalAnswerAggregateOverEntityTable(t *testing.T) {
	rows := &database.RowSet{
		Columns: []string{"total_quantity"},
		Records: [][]any{{int64(8421)}},
	}

	answer := LocalAnswer("", "SELECT SUM(order_items.quantity) AS total_quantity FROM order_items", rows)
	assert.Contains(t, answer, "total of 8,421.00 across 1 records")
}

func TestFormatterAnswerHappyPath(t *testing.T) {
	service := &mockService{reply: "Ada Byrne leads customer spending at $1,250.50."}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512})

	sql := "SELECT c.name, SUM(o.total_amount) as total_spent FROM customers c JOIN orders o ON 1=1 GROUP BY c.name"
	answer := f.Answer(context.Background(), "who spent most", sql, revenueRows(), nil)

	assert.Equal(t, "Ada Byrne leads customer spending at $1,250.50.", answer)
	require.Equal(t, 1, service.calls)
	require.Len(t, service.last, 2)
	assert.Contains(t, service.last[0].Content, "FINANCIAL PERFORMANCE ANALYST")
	assert.Contains(t, service.last[1].Content, "who spent most")
	assert.Contains(t, service.last[1].Content, "Query returned 3 records")
}

func TestFormatterStripsLeakage(t *testing.T) {
	service := &mockService{reply: "Revenue reached $1,650.\nSQL: SELECT SUM(total) FROM orders"}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512})

	answer := f.Answer(context.Background(), "revenue", "SELECT SUM(total) FROM orders", revenueRows(), nil)
	assert.Equal(t, "Revenue reached $1,650.", answer)
}

func TestFormatterBackendErrorFallsBack(t *testing.T) {
	service := &mockService{err: fmt.Errorf("rate limited")}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512})

	answer := f.Answer(context.Background(), "q", "SELECT name FROM customers", revenueRows(), nil)
	assert.Contains(t, answer, "Customer database contains 3 customer records")
}

func TestFormatterEmptyReplyFallsBack(t *testing.T) {
	service := &mockService{reply: "   "}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512})

	answer := f.Answer(context.Background(), "q", "SELECT name FROM customers", revenueRows(), nil)
	assert.Contains(t, answer, "Customer database contains")
}

func TestFormatterLocalFallbackBypassesBackend(t *testing.T) {
	service := &mockService{reply: "should not be used"}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512, UseLocalFallback: true})

	answer := f.Answer(context.Background(), "q", "SELECT name FROM customers", revenueRows(), nil)
	assert.Equal(t, 0, service.calls)
	assert.Contains(t, answer, "Customer database contains")
}

func TestFormatterEmptyRowsFixedAnswer(t *testing.T) {
	f := NewFormatter(nil, config.LLMConfig{})

	answer := f.Answer(context.Background(), "q", "SELECT name FROM customers WHERE 1=0", &database.RowSet{}, nil)
	assert.Equal(t, "No matching records found for your query.", answer)
}

func TestAnswerPromptMentionsLiveTables(t *testing.T) {
	desc := &schema.Description{Tables: []schema.Table{{Name: "customers"}, {Name: "orders"}}}
	service := &mockService{reply: "fine"}
	f := NewFormatter(service, config.LLMConfig{AnswerMaxTokens: 512})

	f.Answer(context.Background(), "q", "SELECT name FROM customers", revenueRows(), desc)
	assert.Contains(t, service.last[1].Content, "Tables available: customers, orders")
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "1,650.00", formatAmount(1650))
	assert.Equal(t, "999.00", formatAmount(999))
	assert.Equal(t, "1,234,567.89", formatAmount(1234567.89))
	assert.Equal(t, "-12,000.50", formatAmount(-12000.5))
	assert.Equal(t, "1,500", formatUnits(1500))
	assert.Equal(t, "0", formatUnits(0))
}

func TestClassTitle(t *testing.T) {
	assert.Equal(t, "Customer Product Relationship", classTitle(ClassCustomerProductRelationship))
	assert.Equal(t, "General", classTitle(ClassGeneral))
}

func TestLeakagePatternKeepsCleanText(t *testing.T) {
	clean := "German customers lead with 42% of revenue."
	assert.Equal(t, clean, strings.TrimSpace(leakagePattern.ReplaceAllString(clean, "")))
}
