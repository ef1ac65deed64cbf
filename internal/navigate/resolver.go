// Package navigate turns a search result into an AWS console deep link.
//
// Resolution is a pure table lookup keyed by resource type. Each entry is a
// small template function; an unknown type resolves to "" and callers treat
// that as "nothing to open". Nothing here performs I/O.
package navigate

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// template builds the URL for one resource type.
type template func(r domain.ResourceRecord) string

// globalRegion is the console host used by services that are not regional.
const globalRegion = "us-east-1"

var templates = map[string]template{
	"lambda": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/lambda/home?region=%s#/functions/%s", host(r.Region), r.Region, r.Name)
	},
	"loggroup": func(r domain.ResourceRecord) string {
		// the console embeds the group name in an already-encoded fragment
		return fmt.Sprintf("%s/cloudwatch/home?region=%s#logsV2:log-groups/log-group/%s",
			host(r.Region), r.Region, encodeURIComponent(encodeURIComponent(r.Name)))
	},
	"secret": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/secretsmanager/secret?name=%s&region=%s", host(r.Region), r.Name, r.Region)
	},
	"bucket": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("https://s3.console.aws.amazon.com/s3/buckets/%s?tab=objects", r.Name)
	},
	"dynamodb": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/dynamodbv2/home?region=%s#item-explorer?initialTagKey=&maximize=true&table=%s",
			host(r.Region), r.Region, r.Name)
	},
	"rds-cluster": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/rds/home?region=%s#database:id=%s;is-cluster=true;tab=configuration",
			host(r.Region), r.Region, r.Name)
	},
	"rds-db": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/rds/home?region=%s#database:id=%s;is-cluster=false;tab=configuration",
			host(r.Region), r.Region, r.Name)
	},
	"security-group": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/ec2/v2/home?region=%s#SecurityGroup:groupId=%s", host(r.Region), r.Region, namePart(r, 0))
	},
	"elb":    loadBalancer,
	"elb-v2": loadBalancer,
	"sqs": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/sqs/v2/home?region=%s#/queues/%s", host(r.Region), r.Region, encodeURIComponent(r.Name))
	},
	"sns": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/sns/v3/home?region=%s#/topics", host(r.Region), r.Region)
	},
	"api": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/apigateway/home?region=%s#/apis/%s/resources", host(r.Region), r.Region, namePart(r, 0))
	},
	"api-v2": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/apigateway/home?region=%s#/apis/%s/routes", host(r.Region), r.Region, namePart(r, 0))
	},
	"web-acl": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/wafv2/homev2/web-acl/%s/%s/overview?region=%s",
			host(globalRegion), namePart(r, 0), namePart(r, 1), r.Region)
	},
	"waf-ip-set": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/wafv2/homev2/ip-set/%s/%s?region=%s",
			host(globalRegion), namePart(r, 0), namePart(r, 1), r.Region)
	},
	"codebuild": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/codesuite/codebuild/%s/projects/%s/history?region=%s",
			host(r.Region), namePart(r, 1), namePart(r, 0), r.Region)
	},
	"codepipeline": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/codesuite/codepipeline/pipelines/%s/view?region=%s", host(r.Region), r.Name, r.Region)
	},
	"subnet": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/vpc/home?region=%s#SubnetDetails:subnetId=%s", host(r.Region), r.Region, namePart(r, 0))
	},
	"ec2": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/ec2/home?region=%s#InstanceDetails:instanceId=%s", host(r.Region), r.Region, namePart(r, 0))
	},
	"role": func(r domain.ResourceRecord) string {
		// IAM is global; the console always opens it through us-east-1 with a fixed region query
		return fmt.Sprintf("%s/iamv2/home?region=eu-west-1#/roles/details/%s?section=permissions", host(globalRegion), r.Name)
	},
	"event-rule": func(r domain.ResourceRecord) string {
		return fmt.Sprintf("%s/events/home?region=%s#/eventbus/default/rules/%s", host(r.Region), r.Region, namePart(r, 0))
	},
}

func loadBalancer(r domain.ResourceRecord) string {
	return fmt.Sprintf("%s/ec2/v2/home?region=%s#LoadBalancers:search=%s;sort=loadBalancerName", host(r.Region), r.Region, r.Name)
}

// Resolve returns the URL to open for e: the stored URL for pages, the
// resource template otherwise. It returns "" when there is nothing to open.
func Resolve(e domain.Entity) string {
	switch {
	case e.Page != nil:
		return e.Page.URL
	case e.Resource != nil:
		return ResolveResource(*e.Resource)
	}
	return ""
}

// ResolveResource returns the console URL for r, or "" for an unknown type.
func ResolveResource(r domain.ResourceRecord) string {
	tpl, ok := templates[r.Type]
	if !ok {
		return ""
	}
	return tpl(r)
}

// Supported reports whether typ has a URL template.
func Supported(typ string) bool {
	_, ok := templates[typ]
	return ok
}

// Types returns the supported resource types, sorted.
func Types() []string {
	out := make([]string, 0, len(templates))
	for k := range templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func host(region string) string {
	return "https://" + region + ".console.aws.amazon.com"
}

// namePart returns the i-th comma separated component of a compound name,
// or "" when the name has fewer components.
func namePart(r domain.ResourceRecord, i int) string {
	parts := strings.Split(r.Name, ",")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

// encodeURIComponent escapes s the way browsers do for a URI component:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded.
func encodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}

var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
