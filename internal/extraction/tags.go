package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// TagRule maps a tag to the spellings that indicate it. Aliases match case
// insensitively on word boundaries; Exact aliases match case sensitively.
type TagRule struct {
	Tag     string
	Aliases []string
	Exact   []string
}

// DefaultTechnologies is the technology dictionary used when no LLM
// analysis is available.
var DefaultTechnologies = []TagRule{
	// Languages
	{Tag: "Go", Aliases: []string{"golang"}, Exact: []string{"Go"}},
	{Tag: "Python", Aliases: []string{"python", "django", "flask", "fastapi"}},
	{Tag: "TypeScript", Aliases: []string{"typescript"}},
	{Tag: "JavaScript", Aliases: []string{"javascript", "node.js", "nodejs"}},
	{Tag: "Rust", Aliases: []string{"rust", "cargo"}},
	{Tag: "Java", Aliases: []string{"java", "spring boot"}},
	{Tag: "Kotlin", Aliases: []string{"kotlin"}},
	{Tag: "C++", Aliases: []string{"c++"}},
	{Tag: "C#", Aliases: []string{"c#", ".net"}},
	{Tag: "Ruby", Aliases: []string{"ruby", "rails"}},
	{Tag: "Swift", Aliases: []string{"swift", "swiftui"}},
	{Tag: "SQL", Aliases: []string{"sql"}},

	// Frontend
	{Tag: "React", Aliases: []string{"react", "react.js", "next.js", "nextjs"}},
	{Tag: "Vue", Aliases: []string{"vue", "vue.js", "nuxt"}},
	{Tag: "Angular", Aliases: []string{"angular"}},

	// Data
	{Tag: "PostgreSQL", Aliases: []string{"postgres", "postgresql"}},
	{Tag: "MySQL", Aliases: []string{"mysql"}},
	{Tag: "SQLite", Aliases: []string{"sqlite"}},
	{Tag: "MongoDB", Aliases: []string{"mongodb", "mongo"}},
	{Tag: "Redis", Aliases: []string{"redis"}},
	{Tag: "Elasticsearch", Aliases: []string{"elasticsearch", "opensearch"}},
	{Tag: "Kafka", Aliases: []string{"kafka"}},
	{Tag: "RabbitMQ", Aliases: []string{"rabbitmq"}},
	{Tag: "NATS", Aliases: []string{"nats"}},
	{Tag: "Spark", Aliases: []string{"spark", "pyspark"}},

	// Infrastructure
	{Tag: "Kubernetes", Aliases: []string{"kubernetes", "k8s", "helm", "kubectl"}},
	{Tag: "Docker", Aliases: []string{"docker", "dockerfile", "docker-compose"}},
	{Tag: "Terraform", Aliases: []string{"terraform"}},
	{Tag: "AWS", Aliases: []string{"aws", "amazon web services", "lambda", "ec2", "s3"}},
	{Tag: "GCP", Aliases: []string{"gcp", "google cloud", "bigquery", "gke"}},
	{Tag: "Azure", Aliases: []string{"azure"}},
	{Tag: "Prometheus", Aliases: []string{"prometheus"}},
	{Tag: "Grafana", Aliases: []string{"grafana"}},
	{Tag: "OpenTelemetry", Aliases: []string{"opentelemetry", "otel"}},

	// APIs
	{Tag: "gRPC", Aliases: []string{"grpc", "protobuf"}},
	{Tag: "GraphQL", Aliases: []string{"graphql"}},
	{Tag: "REST", Exact: []string{"REST", "RESTful"}},

	// ML
	{Tag: "PyTorch", Aliases: []string{"pytorch"}},
	{Tag: "TensorFlow", Aliases: []string{"tensorflow"}},
	{Tag: "LLMs", Aliases: []string{"llm", "llms", "large language model", "large language models"}},
}

// DefaultSkills is the skill dictionary used when no LLM analysis is
// available.
var DefaultSkills = []TagRule{
	{Tag: "System design", Aliases: []string{"system design", "architecture", "architected", "distributed systems"}},
	{Tag: "Technical leadership", Aliases: []string{"tech lead", "technical lead", "led a team", "led the team", "leadership"}},
	{Tag: "Mentoring", Aliases: []string{"mentor", "mentored", "mentoring", "coaching"}},
	{Tag: "API design", Aliases: []string{"api design", "designed apis", "api-first"}},
	{Tag: "Performance optimization", Aliases: []string{"performance", "latency", "optimized", "optimization", "profiling"}},
	{Tag: "Testing", Aliases: []string{"unit tests", "integration tests", "test coverage", "tdd"}},
	{Tag: "CI/CD", Aliases: []string{"ci/cd", "continuous integration", "continuous delivery", "github actions", "pipelines"}},
	{Tag: "Observability", Aliases: []string{"observability", "monitoring", "tracing", "alerting"}},
	{Tag: "Security", Aliases: []string{"security", "authentication", "authorization", "encryption", "oauth"}},
	{Tag: "Data modeling", Aliases: []string{"data modeling", "schema design", "data model"}},
	{Tag: "Product management", Aliases: []string{"roadmap", "product strategy", "stakeholders"}},
	{Tag: "Incident response", Aliases: []string{"on-call", "incident", "postmortem", "post-mortem"}},
	{Tag: "Machine learning", Aliases: []string{"machine learning", "deep learning", "model training"}},
	{Tag: "Communication", Aliases: []string{"public speaking", "technical writing", "presented", "conference talk"}},
}

type compiledTag struct {
	tag     string
	matcher []*regexp.Regexp
}

// TagExtractor matches tag rules against text.
type TagExtractor struct {
	rules []compiledTag
}

// NewTagExtractor compiles rules.
func NewTagExtractor(rules []TagRule) *TagExtractor {
	t := &TagExtractor{rules: make([]compiledTag, 0, len(rules))}
	for _, r := range rules {
		ct := compiledTag{tag: r.Tag}
		for _, a := range r.Aliases {
			ct.matcher = append(ct.matcher, regexp.MustCompile(`(?i)`+boundary(a)))
		}
		for _, a := range r.Exact {
			ct.matcher = append(ct.matcher, regexp.MustCompile(boundary(a)))
		}
		t.rules = append(t.rules, ct)
	}
	return t
}

// boundary wraps alias so it only matches as a whole word. RE2 has no
// look-around, so the neighbours are consumed.
func boundary(alias string) string {
	return `(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(alias) + `(?:$|[^\p{L}\p{N}_+#])`
}

// ExtractTags returns the tags found in content, sorted.
func (t *TagExtractor) ExtractTags(content string) []string {
	var out []string
	for _, r := range t.rules {
		for _, m := range r.matcher {
			if m.MatchString(content) {
				out = append(out, r.tag)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

var (
	techExtractor  = NewTagExtractor(DefaultTechnologies)
	skillExtractor = NewTagExtractor(DefaultSkills)
)

// Technologies returns the technologies named in content.
func Technologies(content string) []string { return techExtractor.ExtractTags(content) }

// Skills returns the skills described in content.
func Skills(content string) []string { return skillExtractor.ExtractTags(content) }
