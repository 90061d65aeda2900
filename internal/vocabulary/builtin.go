package vocabulary

import "github.com/standardbeagle/termshield/internal/types"

type tr = map[string]string

func term(text string, cat types.Category, prio types.Priority, aliases ...string) *types.Term {
	return &types.Term{Text: text, Category: cat, Priority: prio, Aliases: aliases}
}

func translated(t *types.Term, translations tr) *types.Term {
	t.Translations = translations
	return t
}

func exact(t *types.Term) *types.Term {
	t.PreserveExact = true
	return t
}

func caseSensitive(t *types.Term) *types.Term {
	t.CaseSensitive = true
	return t
}

func specialtyTerm(specialty, text string, cat types.Category, prio types.Priority, aliases ...string) *types.Term {
	t := term(text, cat, prio, aliases...)
	t.Specialty = specialty
	return t
}

// Default returns a fresh copy of the built-in clinical vocabulary. Each call
// builds new Term values, so callers may merge or extend the result freely.
func Default() *Vocabulary {
	const (
		cond   = types.CategoryCondition
		symp   = types.CategorySymptom
		proc   = types.CategoryProcedure
		med    = types.CategoryMedication
		anat   = types.CategoryAnatomy
		lab    = types.CategoryLabTest
		abbr   = types.CategoryAbbreviation
		dose   = types.CategoryDosage
		device = types.CategoryDevice

		crit = types.PriorityCritical
		high = types.PriorityHigh
		mid  = types.PriorityMedium
		low  = types.PriorityLow
	)

	terms := []*types.Term{
		// Conditions
		translated(term("myocardial infarction", cond, crit, "heart attack"), tr{"es": "infarto de miocardio", "fr": "infarctus du myocarde", "de": "Myokardinfarkt"}),
		translated(term("stroke", cond, crit, "cerebrovascular accident"), tr{"es": "accidente cerebrovascular", "fr": "accident vasculaire cérébral", "de": "Schlaganfall"}),
		translated(term("anaphylaxis", cond, crit, "anaphylactic shock"), tr{"es": "anafilaxia", "fr": "anaphylaxie", "de": "Anaphylaxie"}),
		translated(term("sepsis", cond, crit), tr{"es": "sepsis", "fr": "sepsis", "de": "Sepsis"}),
		translated(term("hemorrhage", cond, crit, "haemorrhage", "bleeding"), tr{"es": "hemorragia", "fr": "hémorragie", "de": "Blutung"}),
		translated(term("pulmonary embolism", cond, crit), tr{"es": "embolia pulmonar", "fr": "embolie pulmonaire", "de": "Lungenembolie"}),
		translated(term("diabetes mellitus", cond, high, "diabetes"), tr{"es": "diabetes mellitus", "fr": "diabète sucré", "de": "Diabetes mellitus"}),
		translated(term("hypertension", cond, high, "high blood pressure"), tr{"es": "hipertensión", "fr": "hypertension", "de": "Hypertonie"}),
		translated(term("pneumonia", cond, high), tr{"es": "neumonía", "fr": "pneumonie", "de": "Lungenentzündung"}),
		translated(term("asthma", cond, high), tr{"es": "asma", "fr": "asthme", "de": "Asthma"}),
		translated(term("heart failure", cond, high, "cardiac failure"), tr{"es": "insuficiencia cardíaca", "fr": "insuffisance cardiaque", "de": "Herzinsuffizienz"}),
		translated(term("atrial fibrillation", cond, high), tr{"es": "fibrilación auricular", "fr": "fibrillation auriculaire", "de": "Vorhofflimmern"}),
		term("chronic obstructive pulmonary disease", cond, high),
		term("epilepsy", cond, high),
		term("leukemia", cond, high, "leukaemia"),
		term("tumor", cond, high, "tumour"),
		term("ischemia", cond, high, "ischaemia"),
		term("edema", cond, mid, "oedema"),
		term("anemia", cond, mid, "anaemia"),
		term("arrhythmia", cond, high),
		term("fracture", cond, mid),
		term("infection", cond, mid),
		term("migraine", cond, mid),
		term("osteoarthritis", cond, mid),

		// Symptoms
		translated(term("chest pain", symp, high), tr{"es": "dolor torácico", "fr": "douleur thoracique", "de": "Brustschmerzen"}),
		translated(term("shortness of breath", symp, high, "dyspnea", "dyspnoea"), tr{"es": "disnea", "fr": "dyspnée", "de": "Atemnot"}),
		translated(term("fever", symp, mid, "pyrexia"), tr{"es": "fiebre", "fr": "fièvre", "de": "Fieber"}),
		translated(term("headache", symp, mid, "cephalalgia"), tr{"es": "cefalea", "fr": "céphalée", "de": "Kopfschmerzen"}),
		term("nausea", symp, low),
		term("vomiting", symp, mid, "emesis"),
		term("diarrhea", symp, low, "diarrhoea"),
		term("dizziness", symp, low, "vertigo"),
		term("palpitations", symp, mid),
		term("seizure", symp, high, "convulsion"),
		term("syncope", symp, high, "fainting"),
		term("fatigue", symp, low),
		term("cough", symp, low),

		// Medications
		translated(term("Amoxicillin", med, high, "amoxicillin"), tr{"es": "amoxicilina", "fr": "amoxicilline", "de": "Amoxicillin"}),
		translated(term("Warfarin", med, crit, "warfarin", "Coumadin"), tr{"es": "warfarina", "fr": "warfarine", "de": "Warfarin"}),
		translated(term("Insulin", med, crit, "insulin"), tr{"es": "insulina", "fr": "insuline", "de": "Insulin"}),
		translated(term("Epinephrine", med, crit, "epinephrine", "adrenaline", "adrenalin"), tr{"es": "epinefrina", "fr": "épinéphrine", "de": "Adrenalin"}),
		translated(term("Heparin", med, crit, "heparin"), tr{"es": "heparina", "fr": "héparine", "de": "Heparin"}),
		term("Metformin", med, high, "metformin"),
		term("Lisinopril", med, high, "lisinopril"),
		term("Atorvastatin", med, high, "atorvastatin"),
		term("Metoprolol", med, high, "metoprolol"),
		term("Ibuprofen", med, mid, "ibuprofen"),
		term("Paracetamol", med, mid, "paracetamol", "acetaminophen"),
		term("Aspirin", med, high, "aspirin", "acetylsalicylic acid"),
		term("Morphine", med, crit, "morphine"),
		term("Salbutamol", med, high, "salbutamol", "albuterol"),
		term("Prednisone", med, high, "prednisone"),
		term("Omeprazole", med, mid, "omeprazole"),
		term("Ceftriaxone", med, high, "ceftriaxone"),
		exact(term("Digoxin", med, crit, "digoxin")),
		exact(term("Potassium chloride", med, crit, "KCl")),

		// Procedures
		translated(term("electrocardiogram", proc, high, "ECG", "EKG"), tr{"es": "electrocardiograma", "fr": "électrocardiogramme", "de": "Elektrokardiogramm"}),
		term("cardiopulmonary resuscitation", proc, crit, "CPR"),
		term("intubation", proc, high),
		term("appendectomy", proc, high, "appendicectomy"),
		term("colonoscopy", proc, mid),
		term("biopsy", proc, mid),
		term("dialysis", proc, high, "haemodialysis", "hemodialysis"),
		term("catheterization", proc, mid, "catheterisation"),
		term("magnetic resonance imaging", proc, mid, "MRI"),
		term("computed tomography", proc, mid, "CT scan"),
		term("anesthesia", proc, high, "anaesthesia"),
		term("blood transfusion", proc, high, "transfusion"),

		// Anatomy
		term("heart", anat, low),
		term("lung", anat, low, "lungs"),
		term("liver", anat, low),
		term("kidney", anat, low, "kidneys"),
		term("esophagus", anat, low, "oesophagus"),
		term("abdomen", anat, low),
		term("coronary artery", anat, mid),

		// Lab tests
		term("hemoglobin", lab, high, "haemoglobin", "Hb"),
		term("troponin", lab, high),
		term("creatinine", lab, mid),
		term("blood glucose", lab, high, "glucose"),
		term("complete blood count", lab, mid, "CBC"),
		term("international normalized ratio", lab, crit, "INR"),
		term("HbA1c", lab, high, "glycated hemoglobin"),

		// Abbreviations
		translated(term("twice daily", abbr, mid, "BID"), tr{"es": "dos veces al día", "fr": "deux fois par jour", "de": "zweimal täglich"}),
		translated(term("three times daily", abbr, mid, "TID"), tr{"es": "tres veces al día", "fr": "trois fois par jour", "de": "dreimal täglich"}),
		term("four times daily", abbr, mid, "QID"),
		term("as needed", abbr, mid, "PRN"),
		term("immediately", abbr, high, "STAT"),
		term("nothing by mouth", abbr, high, "NPO"),
		term("intravenous", abbr, high, "IV"),
		term("intramuscular", abbr, mid, "IM"),
		term("congestive heart failure", abbr, high, "CHF"),
		term("acute myocardial infarction", abbr, crit, "AMI"),
		term("blood pressure", abbr, mid, "BP"),
		term("heart rate", abbr, mid, "HR"),
		caseSensitive(term("do not resuscitate", abbr, crit, "DNR")),

		// Dosage units and devices
		caseSensitive(exact(term("mcg", dose, crit, "µg"))),
		exact(term("mg", dose, high)),
		exact(term("mL", dose, high, "ml")),
		term("units", dose, mid),
		term("pacemaker", device, high),
		term("defibrillator", device, high, "AED"),
		term("ventilator", device, high),
		term("stent", device, mid),
	}

	specialties := []Specialty{
		{
			Name:       "cardiology",
			Keywords:   []string{"heart", "cardiac", "coronary", "ECG", "arrhythmia", "valve", "myocardial", "atrial", "ventricular", "angina"},
			Categories: []types.Category{types.CategoryCondition, types.CategoryProcedure, types.CategoryMedication},
			Terms: []*types.Term{
				specialtyTerm("cardiology", "ejection fraction", lab, high, "LVEF"),
				specialtyTerm("cardiology", "troponin I", lab, high),
				specialtyTerm("cardiology", "percutaneous coronary intervention", proc, high, "PCI"),
				specialtyTerm("cardiology", "mitral regurgitation", cond, high),
			},
		},
		{
			Name:       "pulmonology",
			Keywords:   []string{"lung", "respiratory", "breath", "pulmonary", "oxygen", "airway", "bronchial", "spirometry"},
			Categories: []types.Category{types.CategoryCondition, types.CategorySymptom},
			Terms: []*types.Term{
				specialtyTerm("pulmonology", "forced expiratory volume", lab, high, "FEV1"),
				specialtyTerm("pulmonology", "bronchiectasis", cond, high),
				specialtyTerm("pulmonology", "pleural effusion", cond, high),
			},
		},
		{
			Name:       "neurology",
			Keywords:   []string{"brain", "neural", "neurological", "seizure", "cognitive", "nerve", "cerebral", "stroke"},
			Categories: []types.Category{types.CategoryCondition, types.CategorySymptom},
			Terms: []*types.Term{
				specialtyTerm("neurology", "Glasgow Coma Scale", lab, crit, "GCS"),
				specialtyTerm("neurology", "status epilepticus", cond, crit),
				specialtyTerm("neurology", "hemiparesis", symp, high),
			},
		},
		{
			Name:       "endocrinology",
			Keywords:   []string{"diabetes", "insulin", "thyroid", "hormone", "glucose", "endocrine"},
			Categories: []types.Category{types.CategoryCondition, types.CategoryMedication, types.CategoryLabTest},
			Terms: []*types.Term{
				specialtyTerm("endocrinology", "diabetic ketoacidosis", cond, crit, "DKA"),
				specialtyTerm("endocrinology", "thyroid stimulating hormone", lab, high, "TSH"),
				specialtyTerm("endocrinology", "hypoglycemia", cond, crit, "hypoglycaemia"),
			},
		},
		{
			Name:       "oncology",
			Keywords:   []string{"cancer", "tumor", "tumour", "chemotherapy", "malignant", "metastasis", "oncology", "radiation"},
			Categories: []types.Category{types.CategoryCondition, types.CategoryProcedure},
			Terms: []*types.Term{
				specialtyTerm("oncology", "neutropenic fever", cond, crit),
				specialtyTerm("oncology", "carcinoma", cond, high),
				specialtyTerm("oncology", "lymphoma", cond, high),
			},
		},
		{
			Name:       "gastroenterology",
			Keywords:   []string{"stomach", "bowel", "intestinal", "liver", "gastric", "digestive", "abdominal"},
			Categories: []types.Category{types.CategoryCondition, types.CategoryProcedure},
			Terms: []*types.Term{
				specialtyTerm("gastroenterology", "gastroesophageal reflux disease", cond, mid, "GERD", "GORD"),
				specialtyTerm("gastroenterology", "cirrhosis", cond, high),
				specialtyTerm("gastroenterology", "endoscopy", proc, mid),
			},
		},
	}

	return &Vocabulary{
		Terms:       terms,
		Specialties: specialties,
		UrgentKeywords: []string{
			"urgent", "emergency", "immediately", "stat", "critical", "acute",
			"severe", "life-threatening", "unresponsive", "arrest",
		},
		Settings: []SettingGroup{
			{Setting: types.SettingEmergency, Keywords: []string{"emergency department", "emergency room", "ER", "ED", "triage", "ambulance"}},
			{Setting: types.SettingICU, Keywords: []string{"intensive care", "ICU", "critical care"}},
			{Setting: types.SettingSurgical, Keywords: []string{"operating room", "OR", "surgery", "surgical", "preoperative", "postoperative"}},
			{Setting: types.SettingInpatient, Keywords: []string{"admitted", "ward", "inpatient", "hospitalized", "hospitalised"}},
			{Setting: types.SettingOutpatient, Keywords: []string{"clinic", "outpatient", "follow-up", "office visit"}},
		},
		Clues: []ContextClue{
			{Phrase: "chest pain", Keyword: "radiating", Weight: 1.1, Position: PositionAnywhere, MaxDistance: 60},
			{Phrase: "chest pain", Keyword: "acute", Weight: 1.05, Position: PositionBefore, MaxDistance: 30},
			{Phrase: "stroke", Keyword: "heat", Weight: 0.7, Position: PositionBefore, MaxDistance: 10},
			{Phrase: "stroke", Keyword: "swimming", Weight: 0.6, Position: PositionAnywhere, MaxDistance: 40},
			{Phrase: "fracture", Keyword: "x-ray", Weight: 1.1, Position: PositionAnywhere, MaxDistance: 80},
			{Phrase: "insulin", Keyword: "units", Weight: 1.1, Position: PositionAfter, MaxDistance: 20},
			{Phrase: "heart", Keyword: "broken", Weight: 0.6, Position: PositionBefore, MaxDistance: 12},
		},
		Variants: []SpellingVariant{
			{British: "haem", American: "hem"},
			{British: "oedema", American: "edema"},
			{British: "oesoph", American: "esoph"},
			{British: "anaes", American: "anes"},
			{British: "paed", American: "ped"},
			{British: "tumour", American: "tumor"},
			{British: "leukaem", American: "leukem"},
			{British: "ischaem", American: "ischem"},
			{British: "diarrhoea", American: "diarrhea"},
			{British: "oestr", American: "estr"},
			{British: "foet", American: "fet"},
			{British: "isation", American: "ization"},
		},
	}
}
