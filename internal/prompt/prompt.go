// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the natural-language instructions sent to the
// completion endpoint. Every builder is a pure function of its arguments.
package prompt

import (
	"fmt"
	"strings"

	"github.com/bartekus/intellidb/internal/artifact"
)

// codeOnly closes most prompts; the model must answer with a PHP file and
// nothing else so the response can be written verbatim.
const codeOnly = "Return only the complete PHP code. No extra explanations."

// expert renders the shared layout: role and task, description, then a
// bulleted list of requirements. There is no trailing newline.
func expert(task, description string, requirements ...string) string {
	var b strings.Builder
	b.WriteString("You are a Laravel expert. ")
	b.WriteString(task)
	b.WriteString("\nDescription: ")
	b.WriteString(description)
	b.WriteString("\n\nRequirements:")
	for _, r := range requirements {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}

// Middleware asks for an HTTP middleware class.
func Middleware(name, description string) string {
	return expert(
		fmt.Sprintf("Generate a PHP middleware class named %s that performs the following task:", name),
		description,
		`The middleware should be in the App\Http\Middleware namespace.`,
		"It should implement the handle method.",
		"The handle method should take $request and a closure, and return a response.",
		"If any conditions are met, the middleware should take an action (e.g., check for user authentication, handle permissions, etc.).",
		"Return only the complete PHP code (with <?php tag, namespace, and class definition). No extra explanations.",
	)
}

// Repository asks for a standalone repository class. model may be empty, in
// which case the prompt does not tie the repository to a model.
func Repository(name, model, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a Laravel repository class named %s.\n", name)
	if model != "" {
		fmt.Fprintf(&b, "It should be tailored to handle Eloquent operations for the %s model.\n", model)
	}
	fmt.Fprintf(&b, "Additional instructions: %s\n", description)
	b.WriteString("\nPlease include:\n")
	b.WriteString(`- PHP opening tag and namespace (e.g., App\Repositories or similar).` + "\n")
	fmt.Fprintf(&b, "- Class definition with correct name (%s).\n", name)
	b.WriteString("- Any necessary import statements for models, etc.\n")
	b.WriteString("- Type hints for methods and their arguments.\n")
	b.WriteString("- A summary of common repository methods (e.g. all, find, create, update, delete).\n")
	b.WriteString("\nReturn ONLY the final PHP code, no extra explanation or text.\n")
	return b.String()
}

// RepositoryInterface asks for the repository contract of a
// repository/service bundle.
func RepositoryInterface(name, model, description string) string {
	return expert(
		fmt.Sprintf("Please generate a PHP interface for %sRepository that manages the %s model.", name, model),
		description,
		fmt.Sprintf("The interface name: %sRepositoryInterface", name),
		`Namespace: App\Repositories\Contracts`,
		"It should have at least these methods: all(), find($id), create($data), update($id, $data), delete($id).",
		"Return only the complete PHP code (with <?php tag, namespace, interface definition). No extra explanations.",
	)
}

// EloquentRepository asks for the Eloquent implementation of the contract
// produced by RepositoryInterface.
func EloquentRepository(name, model, description string) string {
	return expert(
		fmt.Sprintf("Generate a PHP class named Eloquent%sRepository that implements %sRepositoryInterface.", name, name),
		description,
		`Namespace: App\Repositories`,
		"Implement the methods from the interface.",
		fmt.Sprintf(`Use the Eloquent model: App\Models\%s.`, model),
		codeOnly,
		"Include use statements and type hints as needed.",
	)
}

// Service asks for a service class depending on the repository contract.
func Service(name, model, description string) string {
	return expert(
		fmt.Sprintf("Generate a PHP service class named %sService for handling business logic related to the %s model.", name, model),
		description,
		`Namespace: App\Services`,
		fmt.Sprintf(`It should use App\Repositories\Contracts\%sRepositoryInterface in its constructor.`, name),
		"Include methods like getAll(), getById($id), create($data), update($id, $data), delete($id).",
		codeOnly,
		"Include use statements and type hints as needed.",
	)
}

// Model asks for an Eloquent model.
func Model(model, description string) string {
	return expert(
		fmt.Sprintf("Generate a simple Eloquent model class named %s in Laravel.", model),
		description,
		`Namespace: App\Models`,
		`Extend Illuminate\Database\Eloquent\Model`,
		"Protected $fillable array with sample fields (e.g. ['name', 'email']).",
		codeOnly,
	)
}

// Migration asks for a schema migration against table.
func Migration(name, table, description string) string {
	return expert(
		fmt.Sprintf("Generate a Laravel database migration named %s for the %s table.", name, table),
		description,
		`Return an anonymous class that extends Illuminate\Database\Migrations\Migration (return new class extends Migration).`,
		`Import Illuminate\Database\Schema\Blueprint and Illuminate\Support\Facades\Schema.`,
		"Implement both up() and down(); down() must reverse everything up() does.",
		"Choose sensible column types, indexes and foreign keys for the description.",
		"Return only the complete PHP code (with <?php tag). No extra explanations.",
	)
}

// Factory asks for a model factory.
func Factory(model, description string) string {
	return expert(
		fmt.Sprintf("Generate a model factory class named %sFactory for the %s model.", model, model),
		description,
		`Namespace: Database\Factories`,
		`Extend Illuminate\Database\Eloquent\Factories\Factory.`,
		fmt.Sprintf(`Set the protected $model property to App\Models\%s::class.`, model),
		"Implement the definition() method returning realistic fake attributes using fake().",
		codeOnly,
	)
}

// Rule asks for a custom validation rule.
func Rule(name, description string) string {
	return expert(
		fmt.Sprintf("Generate a custom validation rule class named %s.", name),
		description,
		`Namespace: App\Rules`,
		`Implement Illuminate\Contracts\Validation\ValidationRule.`,
		"Implement validate(string $attribute, mixed $value, Closure $fail): void and call $fail() with a clear message when the value is invalid.",
		codeOnly,
	)
}

// Build dispatches on the request kind. The request is assumed valid.
func Build(req artifact.Request) string {
	desc := req.DescriptionOrDefault()

	switch req.Kind {
	case artifact.KindMiddleware:
		return Middleware(req.Name, desc)
	case artifact.KindRepository:
		return Repository(req.Name, req.ModelName, desc)
	case artifact.KindRepositoryInterface:
		return RepositoryInterface(req.Name, req.Model(), desc)
	case artifact.KindEloquentRepository:
		return EloquentRepository(req.Name, req.Model(), desc)
	case artifact.KindService:
		return Service(req.Name, req.Model(), desc)
	case artifact.KindModel:
		return Model(req.Name, desc)
	case artifact.KindMigration:
		table := artifact.TableName(req.Name)
		if req.ModelName != "" {
			table = artifact.ModelTable(req.ModelName)
		}
		return Migration(req.Name, table, desc)
	case artifact.KindFactory:
		return Factory(req.Model(), desc)
	case artifact.KindRule:
		return Rule(req.Name, desc)
	default:
		return ""
	}
}
