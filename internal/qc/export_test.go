package qc

// ReasonOrderForTest exposes reasonOrder to external tests.
var ReasonOrderForTest = reasonOrder
