package summary

import "github.com/HendryAvila/trustlens/internal/bank"

// --- Headline templates ---
//
// Placeholders: {subject}, {weakest}, {strongest}.

var headlineTemplates = map[Tier]map[Status]string{
	TierTrusted: {
		StatusStable:           "{subject} governance is trusted, anchored by {strongest}; {weakest} is the area to keep watching.",
		StatusProvisional:      "{subject} governance looks trusted, anchored by {strongest}, though {weakest} needs confirming as more responses arrive.",
		StatusInsufficientData: "{subject} governance appears trusted, anchored by {strongest}, with {weakest} the softest area.",
	},
	TierStable: {
		StatusStable:           "{subject} governance is stable, with {strongest} as a strength and {weakest} holding the score back.",
		StatusProvisional:      "{subject} governance looks stable; {strongest} is a strength while {weakest} needs attention before this settles.",
		StatusInsufficientData: "{subject} governance appears stable, with {weakest} holding it back and {strongest} the strongest area.",
	},
	TierElevatedRisk: {
		StatusStable:           "{subject} governance carries elevated risk, driven by {weakest}; {strongest} is the foundation to build from.",
		StatusProvisional:      "{subject} governance is trending toward elevated risk, driven by {weakest}; {strongest} offers a foundation.",
		StatusInsufficientData: "{subject} governance may carry elevated risk around {weakest}; {strongest} is the least exposed area.",
	},
	TierCritical: {
		StatusStable:           "{subject} governance is at critical risk, led by gaps in {weakest}; even {strongest}, the least-bad area, needs work.",
		StatusProvisional:      "{subject} governance is likely at critical risk, led by gaps in {weakest}; {strongest} is the least-bad area.",
		StatusInsufficientData: "{subject} governance may be at critical risk, with {weakest} the most exposed area and {strongest} the least.",
	},
}

// earlySignalPrefix marks headlines built from too few responses.
const earlySignalPrefix = "Early signal: "

var subjectNouns = map[Module]string{
	ModuleOrganisation: "Organisation-wide",
	ModuleSystem:       "This system's",
}

// --- Posture ---

var postureSentences = map[Posture]string{
	PostureProactive:  "Posture is proactive: risk controls and explainability are both established, so issues are likely to be caught before they reach people.",
	PostureReactive:   "Posture is reactive: risk controls and explainability are both weak, so problems are likely to surface only after they cause harm.",
	PostureDeveloping: "Posture is developing: risk controls and explainability are uneven, so some issues will be caught early and others only after the fact.",
}

// --- Confidence notes ---
//
// Arguments: response count, minimum threshold, stable threshold.

var confidenceTemplates = map[Status]string{
	StatusInsufficientData: "Based on %[1]d responses, below the minimum of %[2]d for this assessment. Treat these results as an early signal only.",
	StatusProvisional:      "Based on %[1]d responses, above the minimum of %[2]d but short of the %[3]d needed for a stable read. Results may still shift.",
	StatusStable:           "Based on %[1]d responses, at least the %[3]d needed for a stable read. Results reflect current practice with good confidence.",
}

// --- Driver narratives ---

var whyNarratives = map[bank.Dimension]map[Severity]string{
	bank.Transparency: {
		SeverityStrength: "Systems and their changes are documented and disclosed, so stakeholders can see what is in use.",
		SeverityWatch:    "Documentation and disclosure exist but are patchy, so some systems operate out of view.",
		SeverityWeak:     "There is little record of which systems exist or how they change, so risk cannot be located.",
	},
	bank.Explainability: {
		SeverityStrength: "Decisions can be explained to affected people and inspected by reviewers.",
		SeverityWatch:    "Some decisions can be explained, but tooling and testing of explanations are incomplete.",
		SeverityWeak:     "Outcomes cannot be reliably explained, which blocks both review and meaningful appeal.",
	},
	bank.HumanOversight: {
		SeverityStrength: "People review high-impact outcomes and can override or halt systems when needed.",
		SeverityWatch:    "Human review exists for some decisions, but escalation and override paths are not consistent.",
		SeverityWeak:     "Automated outcomes take effect with little human review or ability to intervene.",
	},
	bank.RiskControls: {
		SeverityStrength: "Risks are assessed before deployment and monitored in production with a response plan behind them.",
		SeverityWatch:    "Core risk controls are in place but monitoring or incident response is not yet dependable.",
		SeverityWeak:     "Systems reach production without consistent risk assessment, testing or monitoring.",
	},
	bank.Accountability: {
		SeverityStrength: "Named owners and a governance forum are answerable for each system, backed by an audit trail.",
		SeverityWatch:    "Ownership is assigned in places, but governance and audit coverage have gaps.",
		SeverityWeak:     "No one is clearly answerable for system outcomes and decisions are hard to audit.",
	},
}

// --- Priority templates ---

type priorityTemplate struct {
	Title     string
	Rationale string
	Probes    []string
}

var priorityTemplates = map[bank.Dimension]priorityTemplate{
	bank.Transparency: {
		Title:     "Make every system visible",
		Rationale: "Risk that cannot be located cannot be managed; an inventory and disclosures are the base every other control builds on.",
		Probes: []string{
			"Which systems are missing from the inventory today?",
			"Where are affected people not told an automated system is involved?",
			"Who is notified when a model or rule set changes?",
		},
	},
	bank.Explainability: {
		Title:     "Make outcomes explainable",
		Rationale: "Without usable explanations, reviewers cannot challenge results and affected people cannot appeal them.",
		Probes: []string{
			"Can a reviewer reconstruct why a specific decision was made?",
			"Have explanations been tested with the people who receive them?",
			"Are known failure modes published next to outputs?",
		},
	},
	bank.HumanOversight: {
		Title:     "Put people back in the loop",
		Rationale: "High-impact outcomes need a person able to review, override and escalate before harm compounds.",
		Probes: []string{
			"Which high-impact decisions take effect without human review?",
			"When was the override or kill switch last exercised?",
			"How does an affected person reach a human reviewer?",
		},
	},
	bank.RiskControls: {
		Title:     "Close the core risk controls",
		Rationale: "Pre-deployment assessment, fairness testing and production monitoring are what turn known risks into managed ones.",
		Probes: []string{
			"Which live systems skipped a pre-deployment risk assessment?",
			"What alerts fire when production performance drifts?",
			"Does the incident plan cover AI-specific failures?",
		},
	},
	bank.Accountability: {
		Title:     "Name who answers for outcomes",
		Rationale: "Controls decay without an owner; clear accountability and an audit trail keep the rest of the programme honest.",
		Probes: []string{
			"Does every system have a named accountable owner?",
			"What can the governance forum approve, pause or retire?",
			"Could a past decision be audited end to end today?",
		},
	},
}
