package store

import (
	"context"
	"time"

	"github.com/Rhysmalcolm13/agentity/models"
)

// blogCategories lists the topics posts may belong to.
var blogCategories = []models.Category{
	{ID: "1", Name: "Tutorials", Slug: "tutorials", Description: "Step-by-step guides and tutorials"},
	{ID: "2", Name: "News", Slug: "news", Description: "Latest updates and announcements"},
	{ID: "3", Name: "Case Studies", Slug: "case-studies", Description: "Real-world examples and success stories"},
}

var (
	authorSarah = models.Author{
		ID: "1", Name: "Sarah Johnson", Email: "sarah@agentity.ai", Avatar: "/team/sarah.jpg",
		Bio: "AI Product Manager at Agentity", Role: "Product Manager",
		Social: map[string]string{"twitter": "sarahj", "linkedin": "sarahjohnson"},
	}
	authorMichael = models.Author{
		ID: "2", Name: "Michael Chen", Email: "michael@agentity.ai", Avatar: "/team/michael.jpg",
		Bio: "CEO & Co-founder of Agentity", Role: "CEO",
		Social: map[string]string{"twitter": "michaelc", "linkedin": "michaelchen"},
	}
	authorEmily = models.Author{
		ID: "3", Name: "Emily Rodriguez", Email: "emily@agentity.ai", Avatar: "/team/emily.jpg",
		Bio: "Customer Success Lead at Agentity", Role: "Customer Success",
		Social: map[string]string{"twitter": "emilyr", "linkedin": "emilyrodriguez"},
	}
	authorDavid = models.Author{
		ID: "4", Name: "David Kim", Email: "david@agentity.ai", Avatar: "/team/david.jpg",
		Bio: "Technical Lead at Agentity", Role: "Engineering",
		Social: map[string]string{"twitter": "davidk", "github": "davidkim"},
	}
	authorAlex = models.Author{
		ID: "5", Name: "Alex Morgan", Email: "alex@agentity.ai", Avatar: "/team/alex.jpg",
		Bio: "Head of Research at Agentity", Role: "Research",
		Social: map[string]string{"twitter": "alexm"},
	}
)

func tag(id, name, slug string) models.Tag {
	return models.Tag{ID: id, Name: name, Slug: slug}
}

func published(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var blogPosts = []models.BlogPost{
	{
		ID:    "1",
		Title: "Getting Started with AI Agents",
		Slug:  "getting-started-with-ai-agents",
		Excerpt: "Learn how to create and deploy your first AI agent with Agentity. This guide covers the basics of " +
			"agent creation, configuration, and deployment.",
		Content: "Welcome to Agentity! This guide walks you through creating and deploying your first AI agent. " +
			"An AI agent is an autonomous program that can perceive its environment and take actions to achieve " +
			"specific goals. Sign up for an account, create a new agent from a template or from scratch, configure " +
			"its input and output channels, then test and deploy it to production with a single click. Start with " +
			"simple use cases, test thoroughly in development and iterate based on user feedback.",
		CoverImage:  "/blog/getting-started.jpg",
		Author:      authorSarah,
		Category:    blogCategories[0],
		Categories:  []string{"Tutorials", "Getting Started"},
		Tags:        []models.Tag{tag("1", "Getting Started", "getting-started"), tag("2", "AI Agents", "ai-agents")},
		ReadingTime: 5,
		PublishedAt: published("2025-01-04T10:00:00Z"),
		Featured:    true,
		Views:       1250,
		Likes:       48,
	},
	{
		ID:    "2",
		Title: "Introducing Agentity: The Future of AI Automation",
		Slug:  "introducing-agentity",
		Excerpt: "Today, we're excited to announce the launch of Agentity, a revolutionary platform that makes AI " +
			"automation accessible to businesses of all sizes.",
		Content: "We're thrilled to announce the launch of Agentity, a platform that democratizes AI automation for " +
			"businesses of all sizes. Build sophisticated AI agents without deep technical expertise, connect them " +
			"with your existing tools and workflows, and grow from prototype to production without friction. Key " +
			"features include a visual agent builder, natural language processing, multi-channel support and an " +
			"analytics dashboard.",
		CoverImage:  "/blog/launch-announcement.jpg",
		Author:      authorMichael,
		Category:    blogCategories[1],
		Categories:  []string{"News", "Announcements"},
		Tags:        []models.Tag{tag("3", "Automation", "automation"), tag("4", "Integration", "integration")},
		ReadingTime: 3,
		PublishedAt: published("2025-01-03T09:00:00Z"),
		Views:       2500,
		Likes:       156,
	},
	{
		ID:    "3",
		Title: "Advanced Agent Configuration: Best Practices",
		Slug:  "advanced-agent-configuration",
		Excerpt: "Learn advanced techniques for configuring AI agents, including custom workflows, advanced " +
			"triggers, and integration patterns.",
		Content: "Take your AI agents to the next level with advanced configuration techniques. Learn state " +
			"management with finite state machines, time-based and event-driven triggers, webhook management and " +
			"API authentication. Keep performance high with caching strategies and monitoring, protect your data " +
			"with access control and audit logging, and ship safely with blue-green deployments and canary releases.",
		CoverImage:  "/blog/advanced-config.jpg",
		Author:      authorDavid,
		Category:    blogCategories[0],
		Categories:  []string{"Tutorials", "Advanced"},
		Tags:        []models.Tag{tag("2", "AI Agents", "ai-agents"), tag("6", "Advanced", "advanced")},
		ReadingTime: 12,
		PublishedAt: published("2025-01-01T11:00:00Z"),
		Views:       1100,
		Likes:       67,
	},
	{
		ID:    "4",
		Title: "How Company X Automated Customer Support with AI Agents",
		Slug:  "company-x-case-study",
		Excerpt: "Discover how Company X achieved 80% faster response times and improved customer satisfaction " +
			"using Agentity's AI automation platform.",
		Content: "Company X, a leading e-commerce platform, was facing growing support ticket volume and long " +
			"response times. With Agentity's AI agents they introduced 24/7 first-line support, automated order " +
			"status tracking and return processing, and integrated with their CRM. The results: 80% faster response " +
			"times, a 65% reduction in support costs and a 92% customer satisfaction rate.",
		CoverImage:  "/blog/case-study-1.jpg",
		Author:      authorEmily,
		Category:    blogCategories[2],
		Categories:  []string{"Case Studies", "Customer Support"},
		Tags:        []models.Tag{tag("2", "AI Agents", "ai-agents"), tag("5", "Customer Support", "customer-support")},
		ReadingTime: 8,
		PublishedAt: published("2025-01-02T14:30:00Z"),
		Views:       890,
		Likes:       32,
	},
	{
		ID:    "5",
		Title: "The Future of Work: AI Agents and Human Collaboration",
		Slug:  "future-of-work",
		Excerpt: "Explore how AI agents are transforming the workplace and creating new opportunities for " +
			"human-AI collaboration.",
		Content: "As AI technology continues to evolve, the workplace is undergoing a fundamental transformation. " +
			"Modern AI agents augment human capabilities, automate routine tasks and enable data-driven decisions. " +
			"Effective human-AI collaboration depends on clear role definition, transparent communication and " +
			"continuous learning.",
		CoverImage:  "/blog/future-work.jpg",
		Author:      authorAlex,
		Category:    blogCategories[1],
		Categories:  []string{"News", "Future of Work"},
		Tags:        []models.Tag{tag("7", "Future of Work", "future-of-work"), tag("8", "AI Research", "ai-research")},
		ReadingTime: 7,
		PublishedAt: published("2024-12-30T15:45:00Z"),
		Featured:    true,
		Views:       1800,
		Likes:       94,
	},
	{
		ID:    "6",
		Title: "Building Custom Integrations with Agentity API",
		Slug:  "custom-integrations-api",
		Excerpt: "A comprehensive guide to building custom integrations using the Agentity API, with real-world " +
			"examples and code samples.",
		Content: "The Agentity API lets you build custom integrations for your agents. Authenticate with an API key, " +
			"register webhooks to receive agent events, and call the REST endpoints to create, configure and run " +
			"agents from your own services. Respect rate limits, retry idempotent requests and monitor failures.",
		CoverImage: "/blog/api-integration.jpg",
		Author:     authorDavid,
		Category:   blogCategories[0],
		Categories: []string{"Tutorials", "Integration"},
		Tags: []models.Tag{
			tag("4", "Integration", "integration"),
			tag("9", "API", "api"),
			tag("6", "Advanced", "advanced"),
		},
		ReadingTime: 15,
		PublishedAt: published("2024-12-28T13:20:00Z"),
		Views:       950,
		Likes:       41,
	},
}

// memoryBlogRepository serves the compiled-in blog posts.
type memoryBlogRepository struct {
	posts []models.BlogPost
}

// NewMemoryBlogRepository returns a [BlogRepository] over the built-in posts.
// Passing posts replaces the built-in content.
func NewMemoryBlogRepository(posts ...models.BlogPost) BlogRepository {
	if len(posts) == 0 {
		posts = blogPosts
	}
	return &memoryBlogRepository{posts: posts}
}

// ListPosts returns a copy of every post so callers may sort freely.
func (r *memoryBlogRepository) ListPosts(_ context.Context) ([]models.BlogPost, error) {
	out := make([]models.BlogPost, len(r.posts))
	copy(out, r.posts)
	return out, nil
}
