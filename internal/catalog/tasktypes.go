// Package catalog holds the static reference data of the time bank: the
// task-type catalog shown on the public tasks page, the badge definitions
// with their award thresholds, and the credit plans of the purchase flow.
// All of it is immutable; nothing here touches storage.
package catalog

// TaskType is an immutable catalog entry describing a kind of help the
// community exchanges. Marketplace postings carry the task name as free
// text and are not required to reference this catalog.
type TaskType struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Credits             int      `json:"credits"`
	Category            string   `json:"category"`
	Icon                string   `json:"icon"`
	Description         string   `json:"description"`
	EstimatedTime       string   `json:"estimatedTime"`
	DetailedDescription string   `json:"detailedDescription"`
	RequiredSkills      []string `json:"requiredSkills"`
	TypicalProviders    []string `json:"typicalProviders"`
}

// TaskTypes is the full task-type catalog in display order.
var TaskTypes = []TaskType{
	{
		ID:                  "resume-review",
		Name:                "Resume Review",
		Credits:             2,
		Category:            "Career",
		Icon:                "📄",
		Description:         "Professional resume feedback and suggestions",
		EstimatedTime:       "30-45 mins",
		DetailedDescription: "Get comprehensive feedback on your resume from experienced professionals. We'll review formatting, content, keywords, and overall presentation to help you stand out to employers.",
		RequiredSkills:      []string{"Career Guidance", "Writing", "HR Experience", "Industry Knowledge"},
		TypicalProviders:    []string{"HR Professionals", "Career Counselors", "Senior Professionals", "Recruiters"},
	},
	{
		ID:                  "basic-html-help",
		Name:                "Basic HTML Help",
		Credits:             3,
		Category:            "Programming",
		Icon:                "💻",
		Description:         "Help with HTML basics and simple web pages",
		EstimatedTime:       "1 hour",
		DetailedDescription: "Learn HTML fundamentals including tags, elements, attributes, and basic page structure. Perfect for beginners starting their web development journey.",
		RequiredSkills:      []string{"HTML", "Web Development", "CSS Basics", "Teaching"},
		TypicalProviders:    []string{"Web Developers", "Computer Science Students", "Frontend Engineers", "Coding Bootcamp Graduates"},
	},
	{
		ID:                  "graphic-design-logo",
		Name:                "Graphic Design (Logo)",
		Credits:             5,
		Category:            "Design",
		Icon:                "🎨",
		Description:         "Create a simple logo or brand identity",
		EstimatedTime:       "2-3 hours",
		DetailedDescription: "Professional logo design service including concept development, multiple design options, and final files in various formats. Includes basic brand guidelines.",
		RequiredSkills:      []string{"Graphic Design", "Adobe Creative Suite", "Brand Identity", "Typography"},
		TypicalProviders:    []string{"Graphic Designers", "Design Students", "Freelance Artists", "Brand Specialists"},
	},
	{
		ID:                  "math-tutoring",
		Name:                "Math Tutoring (1 session)",
		Credits:             4,
		Category:            "Education",
		Icon:                "📐",
		Description:         "One-on-one math tutoring session",
		EstimatedTime:       "1-1.5 hours",
		DetailedDescription: "Personalized math tutoring covering topics from basic arithmetic to advanced calculus. Includes problem-solving techniques and exam preparation strategies.",
		RequiredSkills:      []string{"Mathematics", "Teaching", "Patience", "Problem Solving"},
		TypicalProviders:    []string{"Math Teachers", "Engineering Students", "Math Graduates", "Tutoring Professionals"},
	},
	{
		ID:                  "proofreading",
		Name:                "Proofreading (1 article)",
		Credits:             2,
		Category:            "Writing",
		Icon:                "✏️",
		Description:         "Proofread and edit written content",
		EstimatedTime:       "30-60 mins",
		DetailedDescription: "Thorough proofreading and editing service covering grammar, spelling, punctuation, clarity, and flow. Includes suggestions for improvement.",
		RequiredSkills:      []string{"Writing", "Grammar", "Editing", "Attention to Detail"},
		TypicalProviders:    []string{"Writers", "Editors", "English Teachers", "Content Creators"},
	},
	{
		ID:                  "video-editing",
		Name:                "Video Editing (short reel)",
		Credits:             6,
		Category:            "Media",
		Icon:                "🎬",
		Description:         "Edit short videos or social media reels",
		EstimatedTime:       "2-4 hours",
		DetailedDescription: "Professional video editing for short-form content including cuts, transitions, color correction, audio sync, and basic effects. Perfect for social media.",
		RequiredSkills:      []string{"Video Editing", "Adobe Premiere", "Final Cut Pro", "Creative Vision"},
		TypicalProviders:    []string{"Video Editors", "Content Creators", "Film Students", "Social Media Managers"},
	},
	{
		ID:                  "interview-prep",
		Name:                "Mentoring for Interview Prep",
		Credits:             4,
		Category:            "Career",
		Icon:                "🎯",
		Description:         "Mock interviews and preparation guidance",
		EstimatedTime:       "1-2 hours",
		DetailedDescription: "Comprehensive interview preparation including mock interviews, common questions practice, behavioral interview techniques, and confidence building.",
		RequiredSkills:      []string{"Interview Experience", "Communication", "Industry Knowledge", "Mentoring"},
		TypicalProviders:    []string{"Senior Professionals", "HR Managers", "Career Coaches", "Industry Veterans"},
	},
	{
		ID:                  "language-practice",
		Name:                "Language Practice (English/Telugu)",
		Credits:             2,
		Category:            "Language",
		Icon:                "🗣️",
		Description:         "Conversation practice and language learning",
		EstimatedTime:       "45-60 mins",
		DetailedDescription: "Interactive language practice sessions focusing on conversation, pronunciation, grammar, and cultural context. Available for multiple languages.",
		RequiredSkills:      []string{"Language Fluency", "Teaching", "Cultural Knowledge", "Patience"},
		TypicalProviders:    []string{"Native Speakers", "Language Teachers", "International Students", "Polyglots"},
	},
	{
		ID:                  "coding-help",
		Name:                "Coding Doubt Solving (Live)",
		Credits:             3,
		Category:            "Programming",
		Icon:                "🐛",
		Description:         "Live coding help and debugging session",
		EstimatedTime:       "1 hour",
		DetailedDescription: "Real-time coding assistance including debugging, code review, algorithm explanation, and best practices guidance. Screen sharing supported.",
		RequiredSkills:      []string{"Programming", "Debugging", "Problem Solving", "Teaching"},
		TypicalProviders:    []string{"Software Engineers", "Computer Science Students", "Coding Bootcamp Graduates", "Tech Professionals"},
	},
	{
		ID:                  "website-build",
		Name:                "Build a Small Website",
		Credits:             8,
		Category:            "Programming",
		Icon:                "🌐",
		Description:         "Create a simple website or landing page",
		EstimatedTime:       "4-6 hours",
		DetailedDescription: "Complete website development including design, responsive layout, basic functionality, and deployment. Perfect for personal or small business sites.",
		RequiredSkills:      []string{"Web Development", "HTML/CSS", "JavaScript", "Responsive Design"},
		TypicalProviders:    []string{"Web Developers", "Full-Stack Engineers", "Freelance Developers", "CS Graduates"},
	},
	{
		ID:                  "ui-feedback",
		Name:                "App UI Feedback Session",
		Credits:             2,
		Category:            "Design",
		Icon:                "📱",
		Description:         "Review and provide UI/UX feedback",
		EstimatedTime:       "30-45 mins",
		DetailedDescription: "Detailed UI/UX analysis covering usability, design principles, user flow, accessibility, and improvement recommendations.",
		RequiredSkills:      []string{"UI/UX Design", "User Research", "Design Principles", "Critical Analysis"},
		TypicalProviders:    []string{"UX Designers", "Product Designers", "Design Students", "App Developers"},
	},
	{
		ID:                  "assignment-help",
		Name:                "Helping with Assignments",
		Credits:             3,
		Category:            "Education",
		Icon:                "📚",
		Description:         "Academic assignment guidance and support",
		EstimatedTime:       "1-2 hours",
		DetailedDescription: "Academic support for various subjects including research guidance, writing assistance, problem-solving, and study strategies.",
		RequiredSkills:      []string{"Subject Expertise", "Research", "Writing", "Teaching"},
		TypicalProviders:    []string{"Graduate Students", "Subject Experts", "Teachers", "Academic Tutors"},
	},
	{
		ID:                  "career-counseling",
		Name:                "Career Counseling (30 mins)",
		Credits:             3,
		Category:            "Career",
		Icon:                "🚀",
		Description:         "Career guidance and planning session",
		EstimatedTime:       "30 mins",
		DetailedDescription: "Professional career guidance including path exploration, skill assessment, industry insights, and strategic planning for career growth.",
		RequiredSkills:      []string{"Career Guidance", "Industry Knowledge", "Counseling", "Strategic Thinking"},
		TypicalProviders:    []string{"Career Counselors", "Industry Professionals", "HR Leaders", "Executive Coaches"},
	},
	{
		ID:                  "social-media-help",
		Name:                "Social Media Strategy",
		Credits:             4,
		Category:            "Marketing",
		Icon:                "📲",
		Description:         "Help with social media planning and content",
		EstimatedTime:       "1-2 hours",
		DetailedDescription: "Comprehensive social media strategy including content planning, platform optimization, engagement tactics, and growth strategies.",
		RequiredSkills:      []string{"Social Media Marketing", "Content Strategy", "Analytics", "Creative Thinking"},
		TypicalProviders:    []string{"Social Media Managers", "Digital Marketers", "Content Creators", "Marketing Students"},
	},
	{
		ID:                  "photography-tips",
		Name:                "Photography Tips & Editing",
		Credits:             3,
		Category:            "Media",
		Icon:                "📸",
		Description:         "Photography guidance and basic editing",
		EstimatedTime:       "1 hour",
		DetailedDescription: "Photography fundamentals including composition, lighting, camera settings, and basic photo editing techniques using popular software.",
		RequiredSkills:      []string{"Photography", "Photo Editing", "Composition", "Technical Knowledge"},
		TypicalProviders:    []string{"Professional Photographers", "Photography Students", "Visual Artists", "Content Creators"},
	},
}

// TaskTypeByID returns the catalog entry with the given id, if any.
func TaskTypeByID(id string) (TaskType, bool) {
	for _, t := range TaskTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TaskType{}, false
}

// TaskTypeByName returns the catalog entry with the given display name, if any.
func TaskTypeByName(name string) (TaskType, bool) {
	for _, t := range TaskTypes {
		if t.Name == name {
			return t, true
		}
	}
	return TaskType{}, false
}

// TaskTypesByCategory returns all catalog entries in the given category.
func TaskTypesByCategory(category string) []TaskType {
	var res []TaskType
	for _, t := range TaskTypes {
		if t.Category == category {
			res = append(res, t)
		}
	}
	return res
}

// Categories returns the distinct task categories in catalog order.
func Categories() []string {
	seen := make(map[string]bool)
	var res []string
	for _, t := range TaskTypes {
		if !seen[t.Category] {
			seen[t.Category] = true
			res = append(res, t.Category)
		}
	}
	return res
}
