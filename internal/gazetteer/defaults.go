package gazetteer

//nolint:gochecknoglobals // built-in vocabularies, read-only after init
var (
	defaultTechnical = MustVocabulary("technical", []string{
		// languages
		"python", "java", "javascript", "typescript", "c++", "c#", "php", "ruby", "go", "rust",
		"swift", "kotlin", "scala", "r", "matlab", "perl", "bash", "powershell",

		// frameworks and libraries
		"react", "angular", "vue", "node.js", "express", "django", "flask", "spring",
		"laravel", "asp.net", "jquery", "bootstrap", "tailwind", "material-ui",

		// databases
		"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "sql server",
		"elasticsearch", "cassandra", "dynamodb",

		// cloud and devops
		"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "gitlab", "github",
		"terraform", "ansible", "prometheus", "grafana",

		// tools
		"git", "svn", "jira", "confluence", "slack", "teams", "zoom", "figma",
		"adobe", "photoshop", "illustrator", "sketch", "invision",

		// methodologies
		"agile", "scrum", "kanban", "lean", "devops", "ci/cd", "tdd", "bdd",

		// web and integration
		"html", "css", "sass", "less", "webpack", "babel", "npm", "yarn",
		"rest", "graphql", "soap", "microservices", "api", "json", "xml",
	})

	// Portuguese and English synonyms are kept as distinct entries.
	defaultSoft = MustVocabulary("soft_skills", []string{
		"liderança", "leadership",
		"comunicação", "communication",
		"trabalho em equipe", "teamwork",
		"resolução de problemas", "problem solving",
		"criatividade", "creativity",
		"adaptabilidade", "adaptability",
		"flexibilidade", "flexibility",
		"proatividade", "proactivity",
		"organização", "organization",
		"gestão de tempo", "time management",
		"negociação", "negotiation",
		"empatia", "empathy",
		"resiliência", "resilience",
		"pensamento crítico", "critical thinking",
		"inovação", "innovation",
		"colaboração", "collaboration",
		"autonomia", "autonomy",
		"responsabilidade", "responsibility",
		"comprometimento", "commitment",
		"motivação", "motivation",
		"aprendizado contínuo", "continuous learning",
		"gestão de conflitos", "conflict management",
	})
)
