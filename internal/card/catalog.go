package card

const (
	RevealAlignment  EffectID = "REVEAL_ALIGNMENT"
	RevealRole       EffectID = "REVEAL_ROLE"
	CountTraitors    EffectID = "COUNT_TRAITORS"
	BombScan         EffectID = "BOMB_SCAN"
	DefuseAll        EffectID = "DEFUSE_ALL"
	PublicConfession EffectID = "PUBLIC_CONFESSION"
	TipOff           EffectID = "TIP_OFF"
	Blank            EffectID = "BLANK"
	ShieldBoost      EffectID = "SHIELD_BOOST"

	MuteTarget   EffectID = "MUTE_TARGET"
	DoubleVote   EffectID = "DOUBLE_VOTE"
	VoteImmunity EffectID = "VOTE_IMMUNITY"
	BlindVote    EffectID = "BLIND_VOTE"
	ShortDay     EffectID = "SHORT_DAY"
	LongDay      EffectID = "LONG_DAY"
	PeaceDay     EffectID = "PEACE_DAY"

	NightShield  EffectID = "NIGHT_SHIELD"
	GuardTarget  EffectID = "GUARD_TARGET"
	BlockTarget  EffectID = "BLOCK_TARGET"
	SleepingPill EffectID = "SLEEPING_PILL"
	Insight      EffectID = "INSIGHT"
	JamKills     EffectID = "JAM_KILLS"
	DudBombs     EffectID = "DUD_BOMBS"

	DeathImmunity  EffectID = "DEATH_IMMUNITY"
	TargetImmunity EffectID = "TARGET_IMMUNITY"
	Curse          EffectID = "CURSE"
	GuardianAngel  EffectID = "GUARDIAN_ANGEL"
	Spotlight      EffectID = "SPOTLIGHT"
)

var effects = []EffectDef{
	{ID: RevealAlignment, Timing: TimingImmediate, NeedsTarget: true,
		Title: "Taraf Okuma", Description: "Seçtiğin oyuncunun hain olup olmadığını öğrenirsin."},
	{ID: RevealRole, Timing: TimingImmediate, NeedsTarget: true,
		Title: "Maske Düşüyor", Description: "Seçtiğin oyuncunun gerçek rolünü öğrenirsin."},
	{ID: CountTraitors, Timing: TimingImmediate,
		Title: "Sayım", Description: "Hayattaki hain sayısı herkese duyurulur."},
	{ID: BombScan, Timing: TimingImmediate, NeedsTarget: true,
		Title: "Bomba Dedektörü", Description: "Seçtiğin oyuncunun üzerinde bomba olup olmadığını öğrenirsin."},
	{ID: DefuseAll, Timing: TimingImmediate,
		Title: "İmha Ekibi", Description: "Yerleştirilmiş bütün bombalar etkisiz hale getirilir."},
	{ID: PublicConfession, Timing: TimingImmediate,
		Title: "İtiraf", Description: "Gerçek rolün herkese açıklanır."},
	{ID: TipOff, Timing: TimingImmediate,
		Title: "İhbar", Description: "Hain olmayan bir oyuncunun adını öğrenirsin."},
	{ID: Blank, Timing: TimingImmediate,
		Title: "Boş Kart", Description: "Hiçbir şey olmaz."},
	{ID: ShieldBoost, Timing: TimingImmediate, Params: map[string]int{"shields": 1},
		Title: "Kalkan Takviyesi", Description: "Hayattaki her hayatta kalan bir kalkan kazanır."},

	{ID: MuteTarget, Timing: TimingToday, NeedsTarget: true,
		Title: "Susturucu", Description: "Seçtiğin oyuncu bugün konuşamaz."},
	{ID: DoubleVote, Timing: TimingToday, Params: map[string]int{"weight": 2},
		Title: "Çifte Oy", Description: "Bugünkü oyun iki oy sayılır."},
	{ID: VoteImmunity, Timing: TimingToday, NeedsTarget: true,
		Title: "Dokunulmazlık", Description: "Seçtiğin oyuncu bugün oylamayla elenemez."},
	{ID: BlindVote, Timing: TimingToday,
		Title: "Kapalı Oylama", Description: "Bugün kimin kime oy verdiği oylama bitene kadar gizli kalır."},
	{ID: ShortDay, Timing: TimingToday, Params: map[string]int{"percent": 50},
		Title: "Kısa Gün", Description: "Bugünkü tartışma süresi yarıya iner."},
	{ID: LongDay, Timing: TimingToday, Params: map[string]int{"percent": 150},
		Title: "Uzun Gün", Description: "Bugünkü tartışma süresi yarı yarıya uzar."},
	{ID: PeaceDay, Timing: TimingToday,
		Title: "Barış Günü", Description: "Bugün oylamada kimse elenmez."},

	{ID: NightShield, Timing: TimingNextNight,
		Title: "Gece Kalkanı", Description: "Bu gece sana yapılan saldırılar işlemez."},
	{ID: GuardTarget, Timing: TimingNextNight, NeedsTarget: true,
		Title: "Koruma", Description: "Seçtiğin oyuncu bu gece korunur."},
	{ID: BlockTarget, Timing: TimingNextNight, NeedsTarget: true,
		Title: "Engel", Description: "Seçtiğin oyuncunun bu geceki eylemi gerçekleşmez."},
	{ID: SleepingPill, Timing: TimingNextNight, NeedsTarget: true,
		Title: "Uyku İlacı", Description: "Seçtiğin oyuncu bu gece uyur: eylem yapamaz ama saldırıdan da etkilenmez."},
	{ID: Insight, Timing: TimingNextNight,
		Title: "Altıncı His", Description: "Bu gece seni kimlerin ziyaret ettiğini öğrenirsin."},
	{ID: JamKills, Timing: TimingNextNight,
		Title: "Sabotaj", Description: "Bu gece hainlerin saldırısı başarısız olur."},
	{ID: DudBombs, Timing: TimingNextNight,
		Title: "Islak Fitil", Description: "Bu gece bombalar patlamaz."},

	{ID: DeathImmunity, Timing: TimingPersistentShort,
		Title: "Ölümsüzlük", Description: "Bugün elenemezsin ve bu gece saldırılardan korunursun."},
	{ID: TargetImmunity, Timing: TimingPersistentShort, NeedsTarget: true,
		Title: "Kutsama", Description: "Seçtiğin oyuncu bugün elenemez ve bu gece korunur."},
	{ID: Curse, Timing: TimingPersistentShort, NeedsTarget: true,
		Title: "Lanet", Description: "Seçtiğin oyuncunun bugünkü oyu sayılmaz ve bu geceki eylemi gerçekleşmez."},
	{ID: GuardianAngel, Timing: TimingPersistentShort, NeedsTarget: true,
		Title: "Koruyucu Melek", Description: "Seçtiğin oyuncu bu gece korunur, onu kimlerin ziyaret ettiğini öğrenirsin."},
	{ID: Spotlight, Timing: TimingPersistentShort, NeedsTarget: true,
		Title: "Spot Işığı", Description: "Seçtiğin oyuncu bugün susar ve bu gece hiçbir koruma onu kurtaramaz."},
}

var (
	drawOnly = []string{"CARD_DRAWING"}
	anyDay   = []string{"CARD_DRAWING", "DAY_DISCUSSION"}
)

var cards = []Card{
	{Code: "KART-0001", Effect: RevealAlignment, Title: "Taraf Okuma", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 4},
	{Code: "KART-0002", Effect: RevealRole, Title: "Maske Düşüyor", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, OncePerGame: true, Weight: 1},
	{Code: "KART-0003", Effect: CountTraitors, Title: "Sayım", Category: CategoryGroup, Phases: anyDay, Visibility: VisibilityPublic, OncePerGame: true, Weight: 2},
	{Code: "KART-0004", Effect: BombScan, Title: "Bomba Dedektörü", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0005", Effect: DefuseAll, Title: "İmha Ekibi", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPublic, OncePerGame: true, Weight: 2},
	{Code: "KART-0006", Effect: PublicConfession, Title: "İtiraf", Category: CategoryChaos, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
	{Code: "KART-0007", Effect: TipOff, Title: "İhbar", Category: CategoryIndividual, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0008", Effect: Blank, Title: "Boş Kart", Category: CategoryChaos, Phases: anyDay, Visibility: VisibilityPrivateToActor, Weight: 4},
	{Code: "KART-0009", Effect: ShieldBoost, Title: "Kalkan Takviyesi", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},

	{Code: "KART-0010", Effect: MuteTarget, Title: "Susturucu", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToTarget, Weight: 3},
	{Code: "KART-0011", Effect: DoubleVote, Title: "Çifte Oy", Category: CategoryIndividual, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0012", Effect: VoteImmunity, Title: "Dokunulmazlık", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
	{Code: "KART-0013", Effect: BlindVote, Title: "Kapalı Oylama", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
	{Code: "KART-0014", Effect: ShortDay, Title: "Kısa Gün", Category: CategoryChaos, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
	{Code: "KART-0015", Effect: LongDay, Title: "Uzun Gün", Category: CategoryChaos, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
	{Code: "KART-0016", Effect: PeaceDay, Title: "Barış Günü", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPublic, OncePerGame: true, Weight: 1},

	{Code: "KART-0017", Effect: NightShield, Title: "Gece Kalkanı", Category: CategoryIndividual, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0018", Effect: GuardTarget, Title: "Koruma", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0019", Effect: BlockTarget, Title: "Engel", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0020", Effect: SleepingPill, Title: "Uyku İlacı", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToTarget, Weight: 2},
	{Code: "KART-0021", Effect: Insight, Title: "Altıncı His", Category: CategoryIndividual, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 3},
	{Code: "KART-0022", Effect: JamKills, Title: "Sabotaj", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPrivateToActor, OncePerGame: true, Weight: 1},
	{Code: "KART-0023", Effect: DudBombs, Title: "Islak Fitil", Category: CategoryGroup, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 2},

	{Code: "KART-0024", Effect: DeathImmunity, Title: "Ölümsüzlük", Category: CategoryIndividual, Phases: drawOnly, Visibility: VisibilityPrivateToActor, OncePerGame: true, Weight: 1},
	{Code: "KART-0025", Effect: TargetImmunity, Title: "Kutsama", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToTarget, Weight: 2},
	{Code: "KART-0026", Effect: Curse, Title: "Lanet", Category: CategoryChaos, Phases: drawOnly, Visibility: VisibilityPrivateToTarget, Weight: 2},
	{Code: "KART-0027", Effect: GuardianAngel, Title: "Koruyucu Melek", Category: CategoryTarget, Phases: drawOnly, Visibility: VisibilityPrivateToActor, Weight: 2},
	{Code: "KART-0028", Effect: Spotlight, Title: "Spot Işığı", Category: CategoryChaos, Phases: drawOnly, Visibility: VisibilityPublic, Weight: 2},
}
