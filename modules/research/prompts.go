package research

import (
	"strings"
	"text/template"

	"github.com/guarzo/gazettefeed/common/model"
)

// PromptData feeds the drafting templates.
type PromptData struct {
	CompanyName   string
	CompanyNumber string
	NoticeType    string
	NoticeDate    string
	NoticeLink    string

	CompanyContext    string
	FinancialsContext string
	Financials        *model.Financials

	PrimaryKeyword    string
	SearchVolume      *int
	SecondaryKeywords []string
	RelatedTerms      []string
	WordCount         int
	UpdatedOn         string
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"first": func(n int, s []string) []string {
		return s[:min(n, len(s))]
	},
	"hasFigures": func(f *model.Financials) bool {
		return f != nil && (f.TotalAssetsFormatted != nil || f.NetAssetsFormatted != nil ||
			f.CurrentAssetsFormatted != nil || f.LiabilitiesFormatted != nil)
	},
	"orElse": func(def, s string) string {
		if s == "" {
			return def
		}
		return s
	},
}

var (
	researchTmpl = template.Must(template.New("research").Funcs(funcs).Parse(researchPrompt))
	blogTmpl     = template.Must(template.New("blog").Funcs(funcs).Parse(blogPrompt))
	linkedInTmpl = template.Must(template.New("linkedin").Funcs(funcs).Parse(linkedInPrompt))
)

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

const researchPrompt = `You are a business intelligence analyst. I need you to search the web for additional information about this UK company.

Company Name: {{.CompanyName}}
{{if .CompanyNumber}}Company Number: {{.CompanyNumber}}
{{end}}Notice Type: {{orElse "Insolvency" .NoticeType}}
Notice Date: {{orElse "Recent" .NoticeDate}}

I already have Companies House data. Now search the web to find:

1. COMPANY WEBSITE
Find the official company website URL if it exists. Check if it's still active.

2. SOCIAL MEDIA ACCOUNTS
Search for the company on LinkedIn (company page), Twitter/X, Facebook and Instagram.
Look for official accounts and note follower counts if visible.

3. RECENT NEWS (Last 30 Days)
Search for any news articles, press releases, or media coverage about this company from the past month. Include the publication name, headline, date and a brief summary.

4. BUSINESS ANALYSIS
Based on what you find:
What does/did this company actually do?
Any visible signs of trouble before insolvency?
Customer reviews or complaints?
Any connected companies or group structure?

FORMATTING RULES:
Use plain text only, NO markdown (no **, no ##, no bullets).
Use ALL CAPS for section headers.
Use line breaks to separate items.
Be specific with URLs and dates.
State clearly if you cannot find something.`

const blogPrompt = `You are a business intelligence writer for Administration List, a platform for distressed acquisitions and insolvency news.

TASK: Write a {{.WordCount}}-word SEO-optimized blog post about {{.CompanyName}} entering {{.NoticeType}}.

AUDIENCE: Senior decision makers, business buyers, UK entrepreneurs looking for distressed business opportunities.

TONE: Straightforward, compelling, no fuss. Write with authority but avoid jargon. Use short sentences and clear language.

--- COMPANY DATA ---
{{.CompanyContext}}

--- FINANCIAL DATA ---
{{.FinancialsContext}}

--- INSOLVENCY NOTICE ---
Notice Type: {{.NoticeType}}
Published: {{.NoticeDate}}
Gazette Link: {{.NoticeLink}}

--- KEYWORD DATA ---
Primary Keyword: "{{.PrimaryKeyword}}"{{with .SearchVolume}} ({{.}}/month){{end}}
Secondary Keywords: {{join .SecondaryKeywords ", "}}
Related Terms: {{join (first 8 .RelatedTerms) ", "}}

--- BLOG STRUCTURE (MANDATORY) ---

## Key Takeaways
3-5 bullet points summarizing the key facts, with specific numbers (assets, liabilities, dates).

## Business Overview and Financials
What the company does or did, its industry and market context, key financial metrics and scale. 120-150 words.

## Insolvency Overview
The type of insolvency process, date and timeline, what it means for creditors and stakeholders. 100-120 words.

## Reasons for Financial Distress
Likely causes from the available data, industry conditions, company-specific issues. Be factual. 150-180 words.

## Learning Points for Distressed Business Buyers
What makes this opportunity interesting (or not), key considerations, due diligence areas, strategic fit. 100-120 words.

## FAQ for Strategic Buyers
3-4 conversational questions with clear, concise answers, for example:
"What assets does {{.CompanyName}} have?"
"Who are the key stakeholders?"
"What is the timeline for acquisition?"
"What are the main risks?"
Each answer: 40-60 words.

--- WRITING GUIDELINES ---

DO:
Use short sentences (15-20 words average).
Be specific with dates, numbers, and names.
Include company number ({{orElse "if available" .CompanyNumber}}) in the first 2 paragraphs.
Use active voice and scannable paragraphs of 2-3 sentences.
Naturally incorporate "{{.PrimaryKeyword}}" 3-5 times throughout.
Include phrases: "insolvency practitioner", "distressed acquisition", "administration process".
Use UK English spelling (e.g., "favour", "analyse", "organisation").

DON'T:
Speculate without evidence.
Use jargon without explanation.
Write generic advice ("every business is different").
Use hedging words (might, could, perhaps, possibly).
Use AI phrases ("it's worth noting", "dive deeper", "leverage", "unlock", "delve into").
Include opinions. Stick to facts.
Write "not available" or "information not found". Work with what you have.

--- OUTPUT FORMAT ---

Return ONLY the blog content as production-ready HTML in this exact format:

<h1>[Title: 55-60 characters, include company name and insolvency type]</h1>

<p class="meta-description">[150-155 characters summarizing the blog]</p>

<h2>Key Takeaways</h2>
<ul>
<li>[Bullet 1 - specific fact with number or date]</li>
<li>[Bullet 2 - actionable insight]</li>
<li>[Bullet 3 - stakeholder impact]</li>
</ul>

<h2>Business Overview and Financials</h2>
<p>[Paragraph 1 - company description and industry]</p>
<p>[Paragraph 2 - financial metrics and scale]</p>
{{if hasFigures .Financials}}{{with .Financials}}
<table class="financial-data">
<thead>
<tr><th>Metric</th><th>Value</th></tr>
</thead>
<tbody>
{{with .TotalAssetsFormatted}}<tr><td>Total Assets</td><td>{{.}}</td></tr>
{{end}}{{with .NetAssetsFormatted}}<tr><td>Net Assets</td><td>{{.}}</td></tr>
{{end}}{{with .CurrentAssetsFormatted}}<tr><td>Current Assets</td><td>{{.}}</td></tr>
{{end}}{{with .LiabilitiesFormatted}}<tr><td>Liabilities</td><td>{{.}}</td></tr>
{{end}}</tbody>
</table>
{{end}}{{end}}
<h2>Insolvency Overview</h2>
<p>[Paragraph 1 - insolvency process explanation]</p>
<p>[Paragraph 2 - timeline and stakeholder impact]</p>

<h2>Reasons for Financial Distress</h2>
<p>[Paragraph 1 - primary causes analysis]</p>
<p>[Paragraph 2 - industry context and company-specific factors]</p>

<h2>Learning Points for Distressed Business Buyers</h2>
<p>[Paragraph 1 - opportunity assessment]</p>
<p>[Paragraph 2 - due diligence and strategic considerations]</p>

<h2>FAQ for Strategic Buyers</h2>

<h3>Q: [Question 1]</h3>
<p>[Answer - 40-60 words]</p>

<h3>Q: [Question 2]</h3>
<p>[Answer - 40-60 words]</p>

<h3>Q: [Question 3]</h3>
<p>[Answer - 40-60 words]</p>

<hr>
<p class="footer-meta">Last updated: {{.UpdatedOn}}{{with .CompanyNumber}} | Company number: {{.}}{{end}}</p>`

const linkedInPrompt = `You are a LinkedIn content writer for Administration List, a UK platform for distressed business acquisitions and insolvency intelligence.

TASK: Write a LinkedIn post about {{.CompanyName}} entering {{.NoticeType}}.

AUDIENCE: UK business owners, investors, entrepreneurs, and professionals interested in distressed assets, company failures, and turnaround opportunities.

--- COMPANY DATA ---
{{.CompanyContext}}

--- FINANCIAL DATA ---
{{.FinancialsContext}}

--- INSOLVENCY NOTICE ---
Notice Type: {{.NoticeType}}
Published: {{.NoticeDate}}
Gazette Link: {{.NoticeLink}}

--- LINKEDIN POST STRUCTURE (MANDATORY) ---

HOOK (lines 1-2, shown before the "See more" fold):
Stop the scroll. Lead with a number, a stark fact, or a sharp observation.
Max 200 characters combined across both lines.
Do NOT start with the company name. Lead with the insight.

THE STORY (3-5 short paragraphs):
Open with the real financial data: net assets, total liabilities, how long they traded.
Add context: what the company did, what industry, what size.
Tell the story of what went wrong, grounded in the data.
One idea per paragraph, 1-3 short sentences, blank line between each.

THE INSIGHT (1-2 paragraphs):
What does this mean for business owners, buyers, or the wider industry?
What pattern does this represent right now in the UK economy?

SIGN-OFF (1 sentence):
Punchy and forward-looking, or a simple question that invites a reply.

CALL TO ACTION (2 lines):
We track every UK insolvency on Administration List.
Full details at administrationlist.co.uk

--- WRITING RULES ---

DO:
Lead with specific numbers (net assets, liabilities, years trading).
Keep sentences to 15 words maximum.
Use UK English spelling.
Include company number {{orElse "if known" .CompanyNumber}} naturally in the body.
Keep the total post under 1,300 characters.

DON'T:
Start the hook with the company name.
Use em dashes.
Use bullet points or dashes for lists.
Use corporate language ("going forward", "leverage", "it is imperative").
Use AI filler phrases ("it's worth noting", "delve into", "let's explore").
Include HTML tags or hashtags.
Speculate without data to back it up.

OUTPUT: Return ONLY the LinkedIn post as plain text. No intro. Just the post, ready to paste directly into LinkedIn.`
