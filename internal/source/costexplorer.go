package source

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	awstypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// CostExplorerOptions configures the aws-ce:// driver
type CostExplorerOptions struct {
	Region string
	// Metric is a Cost Explorer metric name, NetUnblendedCost by default
	Metric string
	// IDBase offsets generated item ids so they do not collide with file datasets
	IDBase int
}

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	GetCostForecast(ctx context.Context, params *costexplorer.GetCostForecastInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostForecastOutput, error)
}

// CostExplorerLoader turns this year's AWS spend per service into forecast
// items: actual monthly cost so far plus the Cost Explorer forecast for the
// rest of the year, split across services by their year-to-date share.
type CostExplorerLoader struct {
	client        costExplorerAPI
	source        types.Source
	department    string
	subdepartment string
	account       string
	metric        string
	idBase        int
	timeout       time.Duration
	now           func() time.Time
}

// NewCostExplorerLoader builds a loader from aws-ce://<source>?department=&subdepartment=&account=
func NewCostExplorerLoader(ctx context.Context, u *url.URL, opts Options) (*CostExplorerLoader, error) {
	src, ok := types.ParseSource(u.Host)
	if !ok {
		return nil, fmt.Errorf("aws-ce uri: unknown source %q", u.Host)
	}
	region := opts.CostExplorer.Region
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newCostExplorerLoader(costexplorer.NewFromConfig(cfg), src, u.Query(), opts), nil
}

func newCostExplorerLoader(client costExplorerAPI, src types.Source, q url.Values, opts Options) *CostExplorerLoader {
	get := func(key, fallback string) string {
		if v := q.Get(key); v != "" {
			return v
		}
		return fallback
	}
	metric := opts.CostExplorer.Metric
	if metric == "" {
		metric = "NetUnblendedCost"
	}
	idBase := opts.CostExplorer.IDBase
	if idBase == 0 {
		idBase = 100000
	}
	return &CostExplorerLoader{
		client:        client,
		source:        src,
		department:    get("department", "Engineering"),
		subdepartment: get("subdepartment", "Cloud Infrastructure"),
		account:       get("account", "6150 - Cloud Hosting"),
		metric:        metric,
		idBase:        idBase,
		timeout:       opts.timeout(),
		now:           time.Now,
	}
}

func (l *CostExplorerLoader) Name() string { return "aws-ce://" + string(l.source) }

func (l *CostExplorerLoader) Load(ctx context.Context) ([]types.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	now := l.now().UTC()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	nextYear := yearStart.AddDate(1, 0, 0)

	monthly, order, err := l.actuals(ctx, yearStart, nextMonth)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("cost explorer: request timed out after %s", l.timeout)
		}
		return nil, fmt.Errorf("cost explorer: %w", err)
	}

	ytd := make(map[string]float64, len(monthly))
	var ytdTotal float64
	for service, months := range monthly {
		for _, amount := range months {
			ytd[service] += amount
			ytdTotal += amount
		}
	}

	fyTotals := make(map[string]float64, len(ytd))
	for service, amount := range ytd {
		fyTotals[service] = amount
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if ytdTotal > 0 && today.Before(nextYear) {
		remaining, byMonth, err := l.forecast(ctx, today, nextYear)
		if err != nil {
			// Forecasts need enough history; actuals alone are still useful.
			slog.Warn("cost forecast unavailable", "source", l.Name(), "error", err)
		} else {
			for service, amount := range ytd {
				share := amount / ytdTotal
				fyTotals[service] += remaining * share
				for month, mean := range byMonth {
					monthly[service][month] += mean * share
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if fyTotals[order[i]] != fyTotals[order[j]] {
			return fyTotals[order[i]] > fyTotals[order[j]]
		}
		return order[i] < order[j]
	})

	items := make([]types.Item, 0, len(order))
	for i, service := range order {
		items = append(items, types.Item{
			ID:            l.idBase + i + 1,
			Source:        l.source,
			Vendor:        service,
			ProperAccount: l.account,
			Department:    l.department,
			Subdepartment: l.subdepartment,
			Forecast: &types.Forecast{
				ContractStart: types.NewDate(now.Year(), time.January, 1),
				ContractEnd:   types.NewDate(now.Year(), time.December, 31),
				Monthly:       monthly[service],
				FYTotal:       fyTotals[service],
			},
		})
	}
	return items, nil
}

// actuals returns service -> month -> cost and the services in first-seen order
func (l *CostExplorerLoader) actuals(ctx context.Context, start, end time.Time) (map[string]types.Monthly, []string, error) {
	monthly := make(map[string]types.Monthly)
	var order []string

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &awstypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: awstypes.GranularityMonthly,
		Metrics:     []string{l.metric},
		GroupBy: []awstypes.GroupDefinition{{
			Type: awstypes.GroupDefinitionTypeDimension,
			Key:  aws.String("SERVICE"),
		}},
	}

	for {
		result, err := l.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, nil, err
		}

		for _, resultByTime := range result.ResultsByTime {
			if resultByTime.TimePeriod == nil || resultByTime.TimePeriod.Start == nil {
				continue
			}
			periodStart, err := time.Parse("2006-01-02", *resultByTime.TimePeriod.Start)
			if err != nil {
				continue
			}
			monthKey := periodStart.Format("2006-01")

			for _, group := range resultByTime.Groups {
				if len(group.Keys) == 0 || group.Metrics == nil {
					continue
				}
				rawServiceName := group.Keys[0]
				serviceName := normalizeServiceName(rawServiceName)
				if isTaxService(serviceName) || isTaxService(rawServiceName) {
					continue
				}
				cost, exists := group.Metrics[l.metric]
				if !exists {
					continue
				}
				amount := parseAmount(cost.Amount)
				if amount <= 0 {
					continue
				}
				if monthly[serviceName] == nil {
					monthly[serviceName] = make(types.Monthly)
					order = append(order, serviceName)
				}
				// several raw names can normalize to the same service
				monthly[serviceName][monthKey] += amount
			}
		}

		if result.NextPageToken == nil || *result.NextPageToken == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}
	return monthly, order, nil
}

// forecast returns the predicted total from start to end and the mean per month
func (l *CostExplorerLoader) forecast(ctx context.Context, start, end time.Time) (float64, map[string]float64, error) {
	out, err := l.client.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &awstypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: awstypes.GranularityMonthly,
		Metric:      forecastMetric(l.metric),
	})
	if err != nil {
		return 0, nil, err
	}

	byMonth := make(map[string]float64)
	for _, result := range out.ForecastResultsByTime {
		if result.TimePeriod == nil || result.TimePeriod.Start == nil {
			continue
		}
		periodStart, err := time.Parse("2006-01-02", *result.TimePeriod.Start)
		if err != nil {
			continue
		}
		byMonth[periodStart.Format("2006-01")] += parseAmount(result.MeanValue)
	}

	var total float64
	if out.Total != nil {
		total = parseAmount(out.Total.Amount)
	}
	return total, byMonth, nil
}

func forecastMetric(name string) awstypes.Metric {
	switch name {
	case "BlendedCost":
		return awstypes.MetricBlendedCost
	case "UnblendedCost":
		return awstypes.MetricUnblendedCost
	case "AmortizedCost":
		return awstypes.MetricAmortizedCost
	case "NetAmortizedCost":
		return awstypes.MetricNetAmortizedCost
	default:
		return awstypes.MetricNetUnblendedCost
	}
}

func parseAmount(amountStr *string) float64 {
	if amountStr == nil {
		return 0.0
	}
	amount, err := strconv.ParseFloat(*amountStr, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0.0
	}
	return amount
}

// normalizeServiceName standardizes service names to match console display
func normalizeServiceName(serviceName string) string {
	serviceMap := map[string]string{
		"Amazon Elastic Compute Cloud - Compute":       "Amazon Elastic Compute Cloud",
		"Amazon Elastic Container Service":             "Amazon ECS",
		"Amazon EC2 Container Service":                 "Amazon ECS",
		"Amazon Elastic Load Balancing":                "Elastic Load Balancing",
		"AWS Data Transfer":                            "Data Transfer",
		"Amazon CloudFront":                            "CloudFront",
		"Amazon Virtual Private Cloud":                 "Amazon VPC",
		"Amazon Relational Database Service":           "Amazon RDS",
		"AWS DataTransfer":                             "Data Transfer",
		"Amazon Data Transfer":                         "Data Transfer",
		"EC2 - Other":                                  "Data Transfer",
		"EC2-Other":                                    "Data Transfer",
		"Amazon Elastic Compute Cloud - Data Transfer": "Data Transfer",
	}

	if normalized, exists := serviceMap[serviceName]; exists {
		return normalized
	}
	return serviceName
}

// isTaxService checks if a service name represents tax and should be excluded
func isTaxService(serviceName string) bool {
	switch serviceName {
	case "Tax", "AWS Tax", "Amazon Tax", "Sales Tax", "VAT", "GST",
		"Tax Service", "Taxation", "AWS Sales Tax", "Amazon Sales Tax":
		return true
	}
	return false
}
