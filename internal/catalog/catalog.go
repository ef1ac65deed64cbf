// Package catalog holds the built-in console landing pages. The list is
// compiled in, versioned with Version and never changes at runtime.
package catalog

import (
	"strings"
	"sync"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/search"
)

// Version identifies the compiled-in page list. Bump it whenever pages change.
const Version = "2024.1"

// DefaultLimit is the page search cap used when callers pass limit <= 0.
const DefaultLimit = 5

const base = "https://console.aws.amazon.com"

var pages = []domain.PageRecord{
	{Name: "Console Home", URL: base + "/console/home"},
	{Name: "Lambda", URL: base + "/lambda/home#/functions"},
	{Name: "Lambda / Dashboard", URL: base + "/lambda/home#/discover"},
	{Name: "Lambda / Applications", URL: base + "/lambda/home#/applications"},
	{Name: "Lambda / Functions", URL: base + "/lambda/home#/functions"},
	{Name: "Lambda / Additional resources / Code signing configurations", URL: base + "/lambda/home#/code-signing-configurations"},
	{Name: "Lambda / Additional resources / Layers", URL: base + "/lambda/home#/layers"},
	{Name: "S3", URL: base + "/s3/buckets"},
	{Name: "S3 / Buckets", URL: base + "/s3/buckets"},
	{Name: "S3 / Access Points", URL: base + "/s3/ap"},
	{Name: "CloudWatch", URL: base + "/cloudwatch/home"},
	{Name: "CloudWatch / Log groups", URL: base + "/cloudwatch/home#logsV2:log-groups"},
	{Name: "CloudWatch / Alarms", URL: base + "/cloudwatch/home#alarmsV2:"},
	{Name: "DynamoDB / Tables", URL: base + "/dynamodbv2/home#tables"},
	{Name: "EC2 / Instances", URL: base + "/ec2/home#Instances:"},
	{Name: "EC2 / Security Groups", URL: base + "/ec2/home#SecurityGroups:"},
	{Name: "EC2 / Load Balancers", URL: base + "/ec2/home#LoadBalancers:"},
	{Name: "IAM / Roles", URL: "https://us-east-1.console.aws.amazon.com/iamv2/home#/roles"},
	{Name: "RDS / Databases", URL: base + "/rds/home#databases:"},
	{Name: "SQS / Queues", URL: base + "/sqs/v2/home#/queues"},
	{Name: "SNS / Topics", URL: base + "/sns/v3/home#/topics"},
	{Name: "API Gateway / APIs", URL: base + "/apigateway/main/apis"},
	{Name: "Secrets Manager / Secrets", URL: base + "/secretsmanager/listsecrets"},
	{Name: "CodeBuild / Build projects", URL: base + "/codesuite/codebuild/projects"},
	{Name: "CodePipeline / Pipelines", URL: base + "/codesuite/codepipeline/pipelines"},
	{Name: "VPC / Subnets", URL: base + "/vpc/home#subnets:"},
	{Name: "WAF / Web ACLs", URL: "https://us-east-1.console.aws.amazon.com/wafv2/homev2/web-acls"},
	{Name: "EventBridge / Rules", URL: base + "/events/home#/rules"},
}

var (
	once  sync.Once
	index *search.Index
)

func pageIndex() *search.Index {
	once.Do(func() {
		b := search.NewBuilder(search.WithDefaultLimit(DefaultLimit))
		for _, p := range pages {
			b.Add(strings.TrimSpace(p.Name))
		}
		index = b.Build()
	})
	return index
}

// Pages returns a copy of the catalog in catalog order.
func Pages() []domain.PageRecord {
	out := make([]domain.PageRecord, len(pages))
	copy(out, pages)
	return out
}

// Len returns the number of catalog pages.
func Len() int { return len(pages) }

// Search returns up to limit pages matching q, best first. The last page of a
// non-empty result carries IsGroupEnd so callers can render a boundary before
// whatever follows.
func Search(q string, limit int) []domain.PageRecord {
	ms := pageIndex().Search(q, limit)
	if len(ms) == 0 {
		return []domain.PageRecord{}
	}
	out := make([]domain.PageRecord, len(ms))
	for i, m := range ms {
		out[i] = pages[m.ID]
	}
	out[len(out)-1].IsGroupEnd = true
	return out
}
