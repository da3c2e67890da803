package pipeline

// BuildExtractionPrompt returns the first-stage task: a classification-aware
// audit of the raw document text. The rubric is the core business rule of the
// system: goods documents carry ICMS/IPI and must zero the service tax,
// service documents carry ISSQN and must zero the goods taxes, and the
// issuer/recipient direction is asserted explicitly because the source texts
// frequently invert it.
func BuildExtractionPrompt(documentText string) string {
	return `You are a senior tax auditor specialized in Brazilian fiscal legislation. Analyze the fiscal document below:
---
` + documentText + `
---

STEP 1: IDENTIFY THE DOCUMENT TYPE.
- Is it a DANFE or a merchandise sale invoice? -> The focus is ICMS and IPI.
- Is it an NFS-e or a service invoice? -> The focus is ISSQN.

STEP 2: EXTRACT THE CORRECT FIELDS BASED ON THE TYPE.

If it is a GOODS document (merchandise sale):
- Extract: ICMS amount, IPI amount, ICMS tax substitution amount.
- (Every ISSQN field must be 0.)

If it is a SERVICE document (NFS-e):
- Extract: ISSQN amount, ISSQN withheld amount, net amount.
- (Every ICMS and IPI field must be 0.)

COMMON FIELDS TO EXTRACT:
- Issuer name and issuer tax ID; recipient name and recipient tax ID.
  The ISSUER is the counterparty RECEIVING the payment. The RECIPIENT is the
  counterparty PAYING. Determine this from the document's roles, never from
  the position of the names in the text.
- Document number and issue date.
- Gross amount, net amount, discount amount.
- Main line description and classification code (NCM nomenclature or service code).

Never fabricate a value. If a field cannot be resolved from the text, report it
as 0.0 for amounts or leave it empty for identifiers.`
}

// ExtractionExpectation describes the output contract of the extraction stage.
const ExtractionExpectation = "A list of the fiscal data found in the document."

// payloadSchema is the fixed key set of the normalized payload. Keys mirror
// the FiscalRecord columns; document_type is intentionally absent because it
// is derived from the tax fields, never taken from the generation service.
const payloadSchema = `{
    "issuer_name": "string",
    "issuer_tax_id": "string",
    "recipient_name": "string",
    "recipient_tax_id": "string",
    "document_number": "string",
    "issue_date": "string",
    "gross_amount": 0.0,
    "net_amount": 0.0,
    "discount_amount": 0.0,
    "goods_tax_amount": 0.0,
    "goods_tax_surcharge": 0.0,
    "goods_tax_substitution": 0.0,
    "service_tax_amount": 0.0,
    "service_tax_withheld": 0.0,
    "line_description": "string",
    "classification_code": "string"
}`

// BuildNormalizationPrompt returns the second-stage task: folding the
// extractor's free text into the fixed-key payload.
func BuildNormalizationPrompt(description string) string {
	return `You are a data engineer standardizing extracted fiscal data. Fold the extraction result below into a single JSON object:
---
` + description + `
---

Generate a JSON object with exactly these keys (use 0.0 for amounts and "" for text that was not found):
` + payloadSchema + `

Rules:
- Every key must be present. Never omit a key; absent data is 0.0 or "".
- All monetary values are decimal numbers using "." as the decimal separator, regardless of the document's locale.
- Dates use the DD/MM/YYYY format when determinable; otherwise keep the extracted value as-is.
- Return ONLY the raw JSON object - no markdown formatting, no code fences, no explanation.`
}

// NormalizationExpectation describes the output contract of the normalization stage.
const NormalizationExpectation = "A single valid JSON object."

// BuildNarrativePrompt returns the reporting task: an executive narrative over
// the aggregated figures. The input is the JSON-encoded summary, not raw
// records, so the generation service never re-derives totals.
func BuildNarrativePrompt(summaryJSON string) string {
	return `You are a tax consultant writing for a company's finance director. Below are aggregate figures computed from the company's ingested fiscal documents:
---
` + summaryJSON + `
---

Write a short executive analysis in Portuguese covering:
- The split between goods purchases (GOODS) and contracted services (SERVICE), in amounts and document counts.
- The total tax burden and its ratio to the gross total.
- The most significant supplier in each category, when present.
- Any concentration worth the director's attention.

Use only the figures provided. Never invent a number. Keep it under four paragraphs, plain prose, no markdown.`
}

// NarrativeExpectation describes the output contract of the narrative stage.
const NarrativeExpectation = "A short executive analysis in plain prose."
