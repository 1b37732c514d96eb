package synthesis

// DefaultCatalog is the built-in platform catalog used when no catalog file is configured.
// Authority scores follow the relative credibility the product documents assign each platform;
// they are starting points for credibility feedback, not calibrated values.
func DefaultCatalog() []Source {
	return []Source{
		{
			ID: "reddit", DisplayName: "Reddit",
			BaseQuality: 0.70, AuthorityScore: 0.60,
			SocialProof: SocialProof{EngagementRate: 0.85, ViralPotential: 0.90, AuthenticityScore: 0.80, SocialValidation: 0.85},
			ContextWeights: map[QueryContext]float64{
				ContextPainPointDiscovery: 1.4,
				ContextSentimentAnalysis:  1.3,
				ContextMarketValidation:   1.2,
				ContextTechnicalTrends:    0.8,
				ContextRealTimeMonitoring: 0.9,
			},
		},
		{
			ID: "hackernews", DisplayName: "Hacker News",
			BaseQuality: 0.85, AuthorityScore: 0.85,
			SocialProof: SocialProof{EngagementRate: 0.75, ViralPotential: 0.70, AuthenticityScore: 0.90, SocialValidation: 0.80},
			ContextWeights: map[QueryContext]float64{
				ContextTechnicalTrends:     1.4,
				ContextStartupIntelligence: 1.4,
				ContextDeveloperInsights:   1.2,
				ContextSentimentAnalysis:   0.8,
			},
		},
		{
			ID: "github", DisplayName: "GitHub",
			BaseQuality: 0.80, AuthorityScore: 0.95,
			SocialProof: SocialProof{EngagementRate: 0.70, ViralPotential: 0.60, AuthenticityScore: 0.95, SocialValidation: 0.80},
			ContextWeights: map[QueryContext]float64{
				ContextDeveloperInsights:  1.5,
				ContextTechnicalTrends:    1.3,
				ContextPainPointDiscovery: 0.9,
				ContextMarketValidation:   0.6,
				ContextSentimentAnalysis:  0.5,
			},
		},
		{
			ID: "stackoverflow", DisplayName: "Stack Overflow",
			BaseQuality: 0.85, AuthorityScore: 0.90,
			SocialProof: SocialProof{EngagementRate: 0.65, ViralPotential: 0.40, AuthenticityScore: 0.90, SocialValidation: 0.85},
			ContextWeights: map[QueryContext]float64{
				ContextDeveloperInsights:  1.4,
				ContextPainPointDiscovery: 1.1,
				ContextTechnicalTrends:    1.0,
				ContextMarketValidation:   0.5,
				ContextRealTimeMonitoring: 0.5,
			},
		},
		{
			ID: "twitter", DisplayName: "Twitter / X",
			BaseQuality: 0.55, AuthorityScore: 0.50,
			SocialProof: SocialProof{EngagementRate: 0.90, ViralPotential: 0.95, AuthenticityScore: 0.60, SocialValidation: 0.75},
			ContextWeights: map[QueryContext]float64{
				ContextRealTimeMonitoring: 1.5,
				ContextSentimentAnalysis:  1.3,
				ContextTechnicalTrends:    1.0,
				ContextDeveloperInsights:  0.8,
			},
		},
		{
			ID: "producthunt", DisplayName: "Product Hunt",
			BaseQuality: 0.70, AuthorityScore: 0.70,
			SocialProof: SocialProof{EngagementRate: 0.70, ViralPotential: 0.80, AuthenticityScore: 0.70, SocialValidation: 0.80},
			ContextWeights: map[QueryContext]float64{
				ContextCompetitiveAnalysis: 1.4,
				ContextStartupIntelligence: 1.3,
				ContextMarketValidation:    1.2,
				ContextDeveloperInsights:   0.7,
			},
		},
		{
			ID: "indiehackers", DisplayName: "Indie Hackers",
			BaseQuality: 0.75, AuthorityScore: 0.65,
			SocialProof: SocialProof{EngagementRate: 0.60, ViralPotential: 0.50, AuthenticityScore: 0.85, SocialValidation: 0.70},
			ContextWeights: map[QueryContext]float64{
				ContextMarketValidation:    1.4,
				ContextStartupIntelligence: 1.3,
				ContextPainPointDiscovery:  1.2,
				ContextTechnicalTrends:     0.7,
			},
		},
		{
			ID: "devto", DisplayName: "DEV Community",
			BaseQuality: 0.70, AuthorityScore: 0.70,
			SocialProof: SocialProof{EngagementRate: 0.60, ViralPotential: 0.55, AuthenticityScore: 0.80, SocialValidation: 0.65},
			ContextWeights: map[QueryContext]float64{
				ContextDeveloperInsights: 1.3,
				ContextTechnicalTrends:   1.2,
				ContextMarketValidation:  0.6,
			},
		},
		{
			ID: "news", DisplayName: "Tech news outlets",
			BaseQuality: 0.80, AuthorityScore: 0.85,
			SocialProof: SocialProof{EngagementRate: 0.55, ViralPotential: 0.65, AuthenticityScore: 0.75, SocialValidation: 0.70},
			ContextWeights: map[QueryContext]float64{
				ContextRealTimeMonitoring:  1.3,
				ContextCompetitiveAnalysis: 1.2,
				ContextStartupIntelligence: 1.1,
				ContextPainPointDiscovery:  0.6,
			},
		},
	}
}

// DefaultKeywords is the lexical trigger table for each context.
// Matching is case-insensitive substring search, so stems such as "frustrat" are intentional.
func DefaultKeywords() map[QueryContext][]string {
	return map[QueryContext][]string{
		ContextPainPointDiscovery: {
			"pain point", "problem", "frustrat", "struggl", "complain", "annoying",
			"hate", "difficult", "broken", "workaround", "wish there was", "onboarding",
		},
		ContextMarketValidation: {
			"market", "validate", "validation", "demand", "willing to pay", "pricing",
			"customer", "target audience", "product-market fit", "market size",
		},
		ContextTechnicalTrends: {
			"trend", "latest", "emerging", "adoption", "new framework", "kubernetes",
			"ai model", "state of", "rising", "popular", "technology", "future of",
		},
		ContextDeveloperInsights: {
			"developer", "programmer", "engineer", "ci pipeline", "ci/cd", "devops",
			"tooling", "codebase", "sdk", "debugging", "developer experience", "open source",
		},
		ContextStartupIntelligence: {
			"startup", "founder", "funding", "seed round", "series a", "venture",
			"bootstrapp", "launch", "y combinator", "accelerator", "mrr",
		},
		ContextCompetitiveAnalysis: {
			"competitor", "competition", "alternative to", "versus", " vs ", "compare",
			"comparison", "market share", "positioning", "differentiat",
		},
		ContextSentimentAnalysis: {
			"sentiment", "opinion", "how do people feel", "perception", "reaction",
			"love", "reviews", "feedback", "mood", "backlash",
		},
		ContextRealTimeMonitoring: {
			"real-time", "realtime", "right now", "breaking", "today", "this week",
			"monitor", "alert", "live update", "happening",
		},
		ContextGeneralExploration: {
			"overview", "explore", "what is", "tell me about", "general", "introduction",
			"learn about", "summary",
		},
	}
}
