package lab

import "github.com/ormasoftchile/labcheck/pkg/toolchain"

// GoogleCheckOptions hold clang-tidy identifier naming rules that follow the
// Google C++ style guide.
var GoogleCheckOptions = []toolchain.CheckOption{
	{Key: "readability-identifier-naming.ClassCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.ClassMemberCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.ConstexprVariableCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.ConstexprVariablePrefix", Value: "k"},
	{Key: "readability-identifier-naming.EnumCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.EnumConstantCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.EnumConstantPrefix", Value: "k"},
	{Key: "readability-identifier-naming.GlobalFunctionCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.FunctionCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.GlobalConstantCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.GlobalConstantPrefix", Value: "k"},
	{Key: "readability-identifier-naming.StaticConstantCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.StaticConstantPrefix", Value: "k"},
	{Key: "readability-identifier-naming.StaticVariableCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.MacroDefinitionCase", Value: "UPPER_CASE"},
	{Key: "readability-identifier-naming.MacroDefinitionIgnoredRegexp", Value: "^[A-Z]+(_[A-Z]+)*_$"},
	{Key: "readability-identifier-naming.MemberCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.PrivateMemberSuffix", Value: "_"},
	{Key: "readability-identifier-naming.PublicMemberSuffix", Value: ""},
	{Key: "readability-identifier-naming.NamespaceCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.ParameterCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.TypeAliasCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.TypedefCase", Value: "CamelCase"},
	{Key: "readability-identifier-naming.VariableCase", Value: "lower_case"},
	{Key: "readability-identifier-naming.IgnoreMainLikeFunctions", Value: "1"},
}

// DefaultChecks enables every clang-tidy check except those too noisy for
// introductory labs.
var DefaultChecks = []string{
	"*",
	"-misc-unused-parameters",
	"-modernize-use-trailing-return-type",
	"-google-build-using-namespace",
	"-cppcoreguidelines-avoid-magic-numbers",
	"-readability-magic-numbers",
	"-fuchsia-default-arguments-calls",
	"-llvmlibc-callee-namespace",
	"-llvmlibc-implementation-in-namespace",
	"-llvm-header-guard",
	"-bugprone-easily-swappable-parameters",
	"-llvm-else-after-return",
	"-readability-else-after-return",
	"-readability-simplify-boolean-expr",
}

// Default returns the built-in two-part lab: a sandwich order program and
// a blackjack hand scorer.
func Default() *Config {
	return &Config{
		Name:    "lab-05",
		DueDate: "2023-10-25",
		SectionDueDates: map[string]string{
			"mon":  "2023-10-25",
			"tues": "2023-10-18",
			"wed":  "2023-10-18",
		},
		MakefileName: "Makefile",
		Tidy: toolchain.TidyOptions{
			Checks:       DefaultChecks,
			CheckOptions: GoogleCheckOptions,
			CompilerOptions: []string{
				"-std=c++17", "-I", "/opt/local/include", "-I", "/usr/local/include",
				"-nostdinc++", "-I/usr/include/c++/11", "-I/usr/include/x86_64-linux-gnu/c++/11",
			},
		},
		Build: BuildSettings{
			CXX:      "clang++",
			CXXFlags: "-g -O3 -Wall -pedantic -pipe -std=c++17",
			LDFlags:  "-g -O3 -Wall -pedantic -pipe -std=c++17",
			Platforms: map[string]Platform{
				"linux": {
					CXXFlags:      "-D LINUX -nostdinc++ -I/usr/include/c++/11 -I/usr/include/x86_64-linux-gnu/c++/11",
					LDFlags:       "-L /usr/lib/gcc/x86_64-linux-gnu/11",
					Sed:           "sed",
					GTestIncludes: "-D LINUX -nostdinc++ -I/usr/include/c++/11 -I/usr/include/x86_64-linux-gnu/c++/11",
					GTestLibs:     "-L /usr/lib/gcc/x86_64-linux-gnu/11 -lgtest -lgtest_main -lpthread",
				},
				"darwin": {
					CXXFlags:      "-D OSX -nostdinc++ -I/opt/local/include/libcxx/v1",
					LDFlags:       "-L/Library/Developer/CommandLineTools/SDKs/MacOSX.sdk/usr/lib -L/opt/local/lib/libcxx",
					Sed:           "gsed",
					GTestIncludes: "-I/opt/local/include -I/opt/local/src/googletest",
					GTestLibs:     "-L/opt/local/lib -lgtest -lgtest_main",
				},
			},
		},
		Parts: []Part{
			{
				Dir:       "part-1",
				Target:    "sandwich",
				Src:       []string{"sandwich.cc"},
				Suite:     "sandwich",
				UnitTests: true,
			},
			{
				Dir:       "part-2",
				Target:    "blackjack",
				Src:       []string{"blackjack.cc", "blackjack_functions.cc"},
				Headers:   []string{"blackjack_functions.h"},
				Suite:     "blackjack",
				UnitTests: true,
			},
		},
	}
}
