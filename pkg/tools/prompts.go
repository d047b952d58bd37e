// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PromptEntry binds a prompt definition to its renderer.
type PromptEntry struct {
	Prompt  mcp.Prompt
	Handler func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}

// Prompts returns the guided-workflow prompt templates. Each one pre-loads
// step-by-step instructions that walk a conversation through a business
// workflow using the underlying CRUD tools.
func Prompts() []PromptEntry {
	return []PromptEntry{
		{
			Prompt: mcp.Prompt{
				Name: "create-contract",
				Description: "Step-by-step guided contract creation. Validates contract type, " +
					"company compatibility, and required fields before creating.",
				Arguments: []mcp.PromptArgument{
					{Name: "contract_type", Description: "Contract type to use (optional - will show available types if omitted)"},
					{Name: "company_name", Description: "Company name for the contract (optional - will ask if omitted)"},
				},
			},
			Handler: renderCreateContract,
		},
		{
			Prompt: mcp.Prompt{
				Name: "contract-review",
				Description: "Load a contract, present a summary, check attachments, " +
					"flag health issues, and offer actions.",
				Arguments: []mcp.PromptArgument{
					{Name: "contract_id", Description: "Contract ID to review (optional - will ask or search if omitted)"},
				},
			},
			Handler: renderContractReview,
		},
		{
			Prompt: mcp.Prompt{
				Name: "company-onboarding",
				Description: "Onboard a new company: check existence, create company record, " +
					"and optionally create a primary contact.",
				Arguments: []mcp.PromptArgument{
					{Name: "company_name", Description: "Company name to onboard (optional - will ask if omitted)"},
				},
			},
			Handler: renderCompanyOnboarding,
		},
		{
			Prompt: mcp.Prompt{
				Name: "contract-search-and-report",
				Description: "Search contracts by various criteria and format results " +
					"as a summary report with statistics.",
				Arguments: []mcp.PromptArgument{
					{Name: "search_criteria", Description: "Search criteria (optional - will ask if omitted)"},
				},
			},
			Handler: renderContractSearchReport,
		},
		{
			Prompt: mcp.Prompt{
				Name: "contract-renewal-check",
				Description: "Find contracts expiring within N days, assess renewal status, " +
					"and suggest actions organized by urgency.",
				Arguments: []mcp.PromptArgument{
					{Name: "days_ahead", Description: "Number of days ahead to check for expiring contracts", Required: true},
				},
			},
			Handler: renderContractRenewalCheck,
		},
	}
}

func promptResult(description string, steps []string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(strings.Join(steps, "\n")),
			},
		},
	}
}

func renderCreateContract(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	contractType := req.Params.Arguments["contract_type"]
	companyName := req.Params.Arguments["company_name"]

	steps := []string{
		"I want to create a new contract in Agiloft. " +
			"Please guide me through the process step by step.",
	}

	if contractType != "" {
		steps = append(steps, fmt.Sprintf("\nI'd like to use contract type: %s", contractType))
	} else {
		steps = append(steps,
			"\nFirst, search for available contract types using "+
				"agiloft_search_contract_types with query \"status=Active\" "+
				"and present them so I can choose one.")
	}

	if companyName != "" {
		steps = append(steps, fmt.Sprintf(
			"\nThe company is: %s. Please verify it exists using agiloft_search_companies "+
				"and check that its type_of_company is compatible with the contract type's "+
				"party_type.", companyName))
	} else {
		steps = append(steps,
			"\nAfter I select a contract type, ask me for the company name. "+
				"Then search for it with agiloft_search_companies to verify it exists "+
				"and check type compatibility with the contract type's party_type.")
	}

	steps = append(steps,
		"\nOnce the contract type and company are confirmed, collect these "+
			"required fields from me:\n"+
			"- record_type (Contract, Child Contract, or Amendment)\n"+
			"- contract_title1\n"+
			"- auto_renewal_term_in_months\n"+
			"- confidential\n"+
			"- evaluation_frequency\n"+
			"And any optional fields I want to provide (dates, amount, owner, etc.).",
		"\nLinked fields (contract_type, company_name, internal_contract_owner) are "+
			"resolved automatically - provide plain values like 'Acme Corp' and the "+
			"server handles the relation markers.",
		"\nAfter gathering all fields, use agiloft_preflight_create_contract "+
			"to validate everything before creating. Then use agiloft_create_contract "+
			"to create the contract.",
		"\nAfter creation, ask if I want to upload any attachments to the new contract. "+
			"IMPORTANT: To attach files to a contract, use agiloft_attach_file_to_contract "+
			"with the file_path parameter pointing at the file on disk. Do NOT use "+
			"file_content_base64 for large files.")

	return promptResult("Step-by-step contract creation workflow", steps), nil
}

func renderContractReview(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	contractID := req.Params.Arguments["contract_id"]

	steps := []string{"I want to review a contract in detail."}

	if contractID != "" {
		steps = append(steps, fmt.Sprintf(
			"\nRetrieve contract ID %s using agiloft_get_contract with all default fields.",
			contractID))
	} else {
		steps = append(steps,
			"\nAsk me for a contract ID or search criteria. If I give search "+
				"criteria, use agiloft_search_contracts to find matching contracts "+
				"and let me pick one.")
	}

	steps = append(steps,
		"\nOnce you have the contract, present a summary including:\n"+
			"- Title, type, status (wfstate)\n"+
			"- Company name\n"+
			"- Amount, dates (start, end, signed)\n"+
			"- Owner\n"+
			"- Term and auto-renewal details",
		"\nThen check for attachments using agiloft_get_attachment_info_contract "+
			"on the 'attached_file' field and report how many files are attached.",
		"\nFlag any potential issues:\n"+
			"- Contract end date is in the past or within 30 days\n"+
			"- Missing key fields (amount, dates, owner)\n"+
			"- Status is Draft or Cancelled",
		"\nFinally, offer available actions:\n"+
			"- Update contract fields\n"+
			"- Upload attachment: use agiloft_attach_file_to_contract with file_path parameter\n"+
			"- Download attachment: use agiloft_retrieve_attachment_attachment on the attachment record\n"+
			"- Trigger an action button\n"+
			"- View the associated company details")

	return promptResult("Contract review and health check", steps), nil
}

func renderCompanyOnboarding(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	companyName := req.Params.Arguments["company_name"]

	steps := []string{"I want to onboard a new company in Agiloft."}

	if companyName != "" {
		steps = append(steps, fmt.Sprintf(
			"\nFirst, check if %q already exists by searching with agiloft_search_companies. "+
				"If it exists, show me the existing record and ask if I want to update it or "+
				"proceed with a new one.", companyName))
	} else {
		steps = append(steps,
			"\nAsk me for the company name, then search agiloft_search_companies "+
				"to check if it already exists.")
	}

	steps = append(steps,
		"\nIf the company doesn't exist (or I want a new one), collect:\n"+
			"- company_name (required)\n"+
			"- type_of_company (required - e.g. Customer, Vendor, Partner)\n"+
			"- status (required - e.g. Active)\n"+
			"- Optional: industry, country, main_city, account_rep",
		"\nCreate the company using agiloft_create_company with the gathered data.",
		"\nAfter creating the company, ask if I want to create a primary contact. "+
			"If yes, collect contact details (first_name, last_name, email, title) "+
			"and create using agiloft_create_contact with the company_name linked.")

	return promptResult("Company onboarding workflow with optional contact creation", steps), nil
}

func renderContractSearchReport(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	criteria := req.Params.Arguments["search_criteria"]

	steps := []string{"I want to search for contracts and get a summary report."}

	if criteria != "" {
		steps = append(steps, fmt.Sprintf(
			"\nSearch criteria: %s\n"+
				"Use agiloft_search_contracts with an appropriate structured query. "+
				"If the criteria is a company name, use company_name~='value'. "+
				"If it's a status, use wfstate='value'.", criteria))
	} else {
		steps = append(steps,
			"\nAsk me what I'm looking for. I can search by:\n"+
				"- Company name\n"+
				"- Contract status (wfstate)\n"+
				"- Contract type\n"+
				"- Date ranges (contract_end_date)\n"+
				"- Amount ranges\n"+
				"- Or any combination using AND/OR")
	}

	steps = append(steps,
		"\nPresent the results as a formatted summary table/report with:\n"+
			"- Total count of matching contracts\n"+
			"- For each contract: ID, title, company, type, status, amount, end date\n"+
			"- Summary statistics: total amount, count by status, count by type",
		"\nAfter showing results, offer to:\n"+
			"- Drill into any specific contract (contract-review)\n"+
			"- Narrow or broaden the search\n"+
			"- Export the data (list the records)")

	return promptResult("Contract search with summary reporting", steps), nil
}

func renderContractRenewalCheck(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	daysAhead := req.Params.Arguments["days_ahead"]
	if daysAhead == "" {
		daysAhead = "90"
	}

	steps := []string{
		fmt.Sprintf("I want to check for contracts expiring within the next %s days.", daysAhead),
		fmt.Sprintf(
			"\nUse agiloft_find_expiring_contracts with days_from_now=%s "+
				"to find contracts approaching their end date.", daysAhead),
		"\nPresent the results organized by urgency:\n" +
			"- URGENT: Expiring within 30 days\n" +
			"- UPCOMING: Expiring within 31-60 days\n" +
			"- PLANNING: Expiring within 61+ days",
		"\nFor each contract, show:\n" +
			"- Title, company, end date, days remaining\n" +
			"- Current status (wfstate)\n" +
			"- Auto-renewal term\n" +
			"- Contract amount",
		"\nSuggest actions for each category:\n" +
			"- URGENT: Immediate review and renewal decision needed\n" +
			"- UPCOMING: Schedule renewal discussions\n" +
			"- PLANNING: Add to renewal pipeline",
		"\nOffer to drill into any specific contract for a full review.",
	}

	return promptResult(fmt.Sprintf("Contract renewal check - next %s days", daysAhead), steps), nil
}
