package bank

import "sync"

// DefaultVersion labels the compiled-in reference bank.
const DefaultVersion = "2024.1"

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the reference bank: 25 maturity questions, five per
// dimension. It is built and validated once per process; a validation
// failure here is a programming error and panics.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := New(DefaultVersion, referenceQuestions())
		if err != nil {
			panic(err)
		}
		defaultBank = b
	})
	return defaultBank
}

func referenceQuestions() []Question {
	return []Question{
		// --- Transparency ---
		{
			ID: "TR-01", Dimension: Transparency, Control: "System inventory",
			Prompt:      "Do you maintain an inventory of AI and automated decision systems in use?",
			AnswerType:  AnswerMaturity,
			Weight:      0.25,
			Remediation: "Stand up a central register of AI and automated decision systems with owner, purpose and data sources for each entry.",
		},
		{
			ID: "TR-02", Dimension: Transparency, Control: "User disclosure",
			Prompt:      "Are affected users told when they interact with or are evaluated by an automated system?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Publish plain-language disclosures at every touchpoint where an automated system interacts with or evaluates a person.",
		},
		{
			ID: "TR-03", Dimension: Transparency, Control: "Model documentation",
			Prompt:      "Is there model or system documentation (purpose, limits, training data) kept current?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Adopt a model card template covering intended use, known limitations and training data provenance, and review it each release.",
		},
		{
			ID: "TR-04", Dimension: Transparency, Control: "Change log",
			Prompt:      "Are material changes to models or decision logic recorded and communicated?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Keep a versioned change log for models and decision rules and notify downstream owners of material changes.",
		},
		{
			ID: "TR-05", Dimension: Transparency, Control: "Public reporting",
			Prompt:      "Do you report externally on how automated systems are governed?",
			AnswerType:  AnswerMaturity,
			Weight:      0.15,
			Remediation: "Issue a periodic external statement summarising how automated systems are governed and audited.",
		},

		// --- Explainability ---
		{
			ID: "EX-01", Dimension: Explainability, Control: "Decision explanations",
			Prompt:      "Can individual decisions be explained to the person affected?",
			AnswerType:  AnswerMaturity,
			Weight:      0.25,
			Remediation: "Provide per-decision explanations that name the main factors behind an outcome in terms the affected person can act on.",
		},
		{
			ID: "EX-02", Dimension: Explainability, Control: "Feature attribution",
			Prompt:      "Are the inputs that drive model outputs identified and reviewed?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Run feature attribution analysis on each model version and review the top drivers for proxies of protected attributes.",
		},
		{
			ID: "EX-03", Dimension: Explainability, Control: "Reviewer tooling",
			Prompt:      "Do internal reviewers have tooling to inspect why a system produced a result?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Give reviewers an inspection view that shows inputs, intermediate scores and the rule or model path behind each result.",
		},
		{
			ID: "EX-04", Dimension: Explainability, Control: "Explanation testing",
			Prompt:      "Are explanations tested for accuracy and comprehensibility?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Test explanations against ground truth and with representative users before relying on them in production.",
		},
		{
			ID: "EX-05", Dimension: Explainability, Control: "Limitations statement",
			Prompt:      "Are known failure modes and limitations stated alongside outputs?",
			AnswerType:  AnswerMaturity,
			Weight:      0.15,
			Remediation: "Attach a limitations statement to outputs describing known failure modes and conditions where results are unreliable.",
		},

		// --- Human Oversight ---
		{
			ID: "HO-01", Dimension: HumanOversight, Control: "Human review",
			Prompt:      "Are high-impact automated decisions reviewed by a human before taking effect?",
			AnswerType:  AnswerMaturity,
			Weight:      0.25,
			Remediation: "Require documented human review before any high-impact automated decision takes effect.",
		},
		{
			ID: "HO-02", Dimension: HumanOversight, Control: "Override capability",
			Prompt:      "Can operators override or halt a system's output?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Build and rehearse an operator override and kill switch for every production system.",
		},
		{
			ID: "HO-03", Dimension: HumanOversight, Control: "Escalation path",
			Prompt:      "Is there a defined escalation path when a system behaves unexpectedly?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Define an escalation path with named responders and response times for unexpected system behaviour.",
		},
		{
			ID: "HO-04", Dimension: HumanOversight, Control: "Reviewer training",
			Prompt:      "Are reviewers trained to recognise automation bias and system limits?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Train reviewers on automation bias and system limits, and track completion for everyone with review duties.",
		},
		{
			ID: "HO-05", Dimension: HumanOversight, Control: "Appeal route",
			Prompt:      "Can affected people contest an automated decision and reach a human?",
			AnswerType:  AnswerMaturity,
			Weight:      0.15,
			Remediation: "Offer an appeal route that reaches a human reviewer within a published time frame.",
		},

		// --- Risk Controls ---
		{
			ID: "RC-01", Dimension: RiskControls, Control: "Risk assessment",
			Prompt:      "Is a risk assessment performed before a system is deployed?",
			AnswerType:  AnswerMaturity,
			Weight:      0.25,
			Remediation: "Make a pre-deployment risk assessment a release gate, covering harm scenarios, affected groups and mitigations.",
		},
		{
			ID: "RC-02", Dimension: RiskControls, Control: "Bias testing",
			Prompt:      "Are systems tested for unfair outcomes across groups?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Add disaggregated fairness testing across relevant groups to the evaluation suite and set acceptance thresholds.",
		},
		{
			ID: "RC-03", Dimension: RiskControls, Control: "Production monitoring",
			Prompt:      "Are model performance and drift monitored in production?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Monitor production performance and input drift with alerts routed to the system owner.",
		},
		{
			ID: "RC-04", Dimension: RiskControls, Control: "Incident response",
			Prompt:      "Is there an incident response plan covering AI-specific failures?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Extend the incident response plan with AI-specific failure scenarios and run a tabletop exercise against it.",
		},
		{
			ID: "RC-05", Dimension: RiskControls, Control: "Third-party due diligence",
			Prompt:      "Are third-party models and data sources assessed before use?",
			AnswerType:  AnswerMaturity,
			Weight:      0.15,
			Remediation: "Assess third-party models and data sources against your risk criteria before procurement and at renewal.",
		},

		// --- Accountability ---
		{
			ID: "AC-01", Dimension: Accountability, Control: "Named owner",
			Prompt:      "Does each system have a named accountable owner?",
			AnswerType:  AnswerMaturity,
			Weight:      0.25,
			Remediation: "Assign a named accountable owner to every system and record the assignment in the system inventory.",
		},
		{
			ID: "AC-02", Dimension: Accountability, Control: "Governance forum",
			Prompt:      "Is there a governance body that approves and reviews automated systems?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Charter a governance forum with authority to approve, pause and retire automated systems.",
		},
		{
			ID: "AC-03", Dimension: Accountability, Control: "Policy",
			Prompt:      "Is there a written policy governing responsible use of AI?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Adopt a written responsible-use policy and map each clause to an owner and a control.",
		},
		{
			ID: "AC-04", Dimension: Accountability, Control: "Audit trail",
			Prompt:      "Are decisions and approvals logged so they can be audited later?",
			AnswerType:  AnswerMaturity,
			Weight:      0.20,
			Remediation: "Log decisions, approvals and model versions with retention long enough to support later audits.",
		},
		{
			ID: "AC-05", Dimension: Accountability, Control: "Independent audit",
			Prompt:      "Are systems periodically audited by a party independent of the build team?",
			AnswerType:  AnswerMaturity,
			Weight:      0.15,
			Remediation: "Schedule periodic audits by a party independent of the build team and track findings to closure.",
		},
	}
}
